package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/storefront-go/storefront/internal/catalog"
	"github.com/storefront-go/storefront/internal/notification"
	"github.com/storefront-go/storefront/internal/order"
	"github.com/storefront-go/storefront/internal/review"
	"github.com/storefront-go/storefront/internal/user"
)

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("httpx: failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("httpx: failed to write JSON response")
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]any{"success": false, "message": message})
}

// respondDomainError maps a service error to a status code. Client and
// domain errors keep their message verbatim; everything else is hidden
// behind a generic message.
func respondDomainError(w http.ResponseWriter, err error) {
	code := mapErrorToStatusCode(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg("httpx: internal error")
		respondWithError(w, code, "Something went wrong, please try again")
		return
	}
	respondWithError(w, code, err.Error())
}

func mapErrorToStatusCode(err error) int {
	var (
		validationErr  *order.ValidationError
		stockErr       *catalog.StockError
		unavailableErr *catalog.UnavailableError
		transitionErr  *order.TransitionError
		notCancellable *order.NotCancellableError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &stockErr),
		errors.As(err, &unavailableErr),
		errors.As(err, &transitionErr),
		errors.As(err, &notCancellable):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrDealNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, review.ErrCommentNotFound),
		errors.Is(err, notification.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, user.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrSessionNotFound):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
