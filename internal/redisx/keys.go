package redisx

import "time"

const (
	// Server-side cart per user: cart:{user_id} -> JSON-encoded cart.
	KeyCart = "cart:%s"

	// Auth session: session:{token} -> JSON {user_id, is_admin}.
	KeySession = "session:%s"
)

var (
	// Carts survive between visits but not forever.
	TTLCart = 30 * 24 * time.Hour
)
