// internal/app/features/accounts/handler.go
package accounts

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/inkwell-live/inkwell/internal/app/store/users"
	"github.com/inkwell-live/inkwell/internal/app/system/apierr"
	"github.com/inkwell-live/inkwell/internal/app/system/httpjson"
	"github.com/inkwell-live/inkwell/internal/app/system/inputval"
	"github.com/inkwell-live/inkwell/internal/app/system/normalize"
	"github.com/inkwell-live/inkwell/internal/app/system/ratelimit"
	"github.com/inkwell-live/inkwell/internal/app/system/timeouts"
	"github.com/inkwell-live/inkwell/internal/app/system/token"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler serves signup and signin.
type Handler struct {
	Users  *userstore.Store
	Tokens *token.Service
	API    *apierr.Logger
	Log    *zap.Logger

	signinLimiter *ratelimit.Limiter
	bcryptCost    int
}

func NewHandler(users *userstore.Store, tokens *token.Service, api *apierr.Logger, limiter *ratelimit.Limiter, bcryptCost int, logger *zap.Logger) *Handler {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Handler{
		Users:         users,
		Tokens:        tokens,
		API:           api,
		Log:           logger,
		signinLimiter: limiter,
		bcryptCost:    bcryptCost,
	}
}

// HandleSignup registers a new user.
//
// POST /api/signup {email, password, username} → 201 {message, userId, email}
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.API.InvalidInput(w, "request body must be valid JSON")
		return
	}

	email := normalize.Email(req.Email)
	username := normalize.Username(req.Username)
	if email == "" || req.Password == "" || username == "" {
		h.API.InvalidInput(w, "email, password, and username are required")
		return
	}
	if !inputval.IsValidEmail(email) {
		h.API.InvalidInput(w, "email address is not valid")
		return
	}
	if !inputval.IsValidUsername(username) {
		h.API.InvalidInput(w, "username is not valid")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.API.Internal(w, "hash password", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, email, username, string(hash))
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		h.API.Conflict(w, "a user with this email already exists")
		return
	case err != nil:
		h.API.Internal(w, "create user", err)
		return
	}

	h.Log.Info("user signed up",
		zap.String("user_id", u.ID),
		zap.String("email", u.Email))

	httpjson.Write(w, http.StatusCreated, signupResponse{
		Message: "user created",
		UserID:  u.ID,
		Email:   u.Email,
	})
}

// HandleSignin verifies credentials and issues a bearer token.
//
// POST /api/signin {email, password} → 200 {token}
//
// Unknown email and wrong password produce the same 401 body so the
// response does not reveal which accounts exist.
func (h *Handler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.API.InvalidInput(w, "request body must be valid JSON")
		return
	}

	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		h.API.InvalidInput(w, "email and password are required")
		return
	}

	ip := ratelimit.ClientIP(r)
	if !h.signinLimiter.Allow(ip) {
		h.Log.Warn("signin rate limit exceeded", zap.String("ip", ip))
		h.API.TooManyRequests(w, "too many signin attempts; try again later")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.API.Unauthenticated(w, "invalid email or password")
		return
	case err != nil:
		h.API.Internal(w, "look up user", err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		h.API.Unauthenticated(w, "invalid email or password")
		return
	}

	tok, err := h.Tokens.Issue(ctx, u.ID)
	if err != nil {
		h.API.Internal(w, "issue token", err)
		return
	}

	// A correct password clears the window so a shared NAT address is
	// not locked out by one noisy neighbor.
	h.signinLimiter.Reset(ip)

	h.Log.Info("user signed in", zap.String("user_id", u.ID))

	httpjson.Write(w, http.StatusOK, signinResponse{Token: tok})
}
