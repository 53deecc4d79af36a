package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/storefront-go/storefront/internal/user"
)

type UserHandler struct {
	users    user.Service
	sessions *user.SessionStore
	validate *validator.Validate
}

func NewUserHandler(users user.Service, sessions *user.SessionStore) *UserHandler {
	return &UserHandler{users: users, sessions: sessions, validate: validator.New()}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Success bool       `json:"success"`
	Token   string     `json:"token"`
	User    *user.User `json:"user"`
}

func formatValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request payload"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	u, err := h.users.Register(r.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	token, err := h.sessions.Create(r.Context(), u)
	if err != nil {
		log.Error().Err(err).Msg("httpx: failed to create session after register")
		respondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondWithJSON(w, http.StatusCreated, authResponse{Success: true, Token: token, User: u})
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	token, err := h.sessions.Create(r.Context(), u)
	if err != nil {
		log.Error().Err(err).Msg("httpx: failed to create session after login")
		respondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondWithJSON(w, http.StatusOK, authResponse{Success: true, Token: token, User: u})
}

func (h *UserHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token != "" {
		if err := h.sessions.Delete(r.Context(), token); err != nil {
			log.Warn().Err(err).Msg("httpx: failed to delete session on logout")
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

func (h *UserHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
		return
	}

	u, err := h.users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
}
