package order

type Status string

const (
	StatusPlaced         Status = "Order Placed"
	StatusPacking        Status = "Packing"
	StatusShipped        Status = "Shipped"
	StatusOutForDelivery Status = "Out for delivery"
	StatusDelivered      Status = "Delivered"
	StatusCancelled      Status = "Cancelled"

	// StatusPending is a legacy alias some clients still send; it behaves
	// like Order Placed for cancellation purposes and is never stored.
	StatusPending Status = "Pending"
)

func (s Status) String() string {
	return string(s)
}

// transitions is the single place the order state machine lives. Terminal
// states map to an empty set.
var transitions = map[Status]map[Status]bool{
	StatusPlaced:         {StatusPacking: true, StatusShipped: true, StatusOutForDelivery: true, StatusDelivered: true, StatusCancelled: true},
	StatusPacking:        {StatusShipped: true, StatusOutForDelivery: true, StatusDelivered: true, StatusCancelled: true},
	StatusShipped:        {StatusOutForDelivery: true, StatusDelivered: true, StatusCancelled: true},
	StatusOutForDelivery: {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Valid reports whether s is a status the backend will store.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// userCancellable is the window in which the customer may cancel their own
// order. Once packing begins only an admin can.
var userCancellable = map[Status]bool{
	StatusPlaced:  true,
	StatusPending: true,
}

func (s Status) UserCancellable() bool {
	return userCancellable[s]
}

// statusPhrase supplies the human-readable fragment for status-change
// notifications ("Your order <phrase>.").
var statusPhrase = map[Status]string{
	StatusPlaced:         "has been placed",
	StatusPacking:        "is being packed",
	StatusShipped:        "has been shipped",
	StatusOutForDelivery: "is out for delivery",
	StatusDelivered:      "has been delivered successfully",
}

func (s Status) Phrase() string {
	if p, ok := statusPhrase[s]; ok {
		return p
	}
	return "has been updated to " + string(s)
}
