// internal/app/features/sessions/handler.go
package sessions

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	sessionstore "github.com/inkwell-live/inkwell/internal/app/store/sessions"
	"github.com/inkwell-live/inkwell/internal/app/system/apierr"
	"github.com/inkwell-live/inkwell/internal/app/system/auth"
	"github.com/inkwell-live/inkwell/internal/app/system/httpjson"
	"github.com/inkwell-live/inkwell/internal/app/system/inputval"
	"github.com/inkwell-live/inkwell/internal/app/system/normalize"
	"github.com/inkwell-live/inkwell/internal/app/system/sessionid"
	"github.com/inkwell-live/inkwell/internal/app/system/timeouts"
	"github.com/inkwell-live/inkwell/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Handler serves the session lifecycle API. Every route is mounted
// behind auth.RequireAuth, so a missing user in the context is a
// wiring bug, not a client error.
type Handler struct {
	Sessions *sessionstore.Store
	API      *apierr.Logger
	Log      *zap.Logger

	titlePolicy *bluemonday.Policy
}

func NewHandler(store *sessionstore.Store, api *apierr.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions: store,
		API:      api,
		Log:      logger,
		// Titles are stored and echoed back verbatim to every client,
		// so markup is stripped outright rather than escaped.
		titlePolicy: bluemonday.StrictPolicy(),
	}
}

// HandleCreate creates a session in the created state, owned by the
// caller.
//
// POST /api/sessions {title} → 200 {sessionId}
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		h.API.Unauthenticated(w, "authentication required")
		return
	}

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		h.API.InvalidInput(w, "request body must be valid JSON with a title")
		return
	}

	title := normalize.Title(h.titlePolicy.Sanitize(req.Title))
	if !inputval.IsValidTitle(title) {
		h.API.InvalidInput(w, "title is required and must be at most 200 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sess, err := h.Sessions.Create(ctx, user.ID, title)
	switch {
	case errors.Is(err, sessionstore.ErrEmptyTitle):
		h.API.InvalidInput(w, "title must not be empty")
		return
	case err != nil:
		h.API.Internal(w, "create session", err)
		return
	}

	h.Log.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("owner_id", user.ID))

	httpjson.Write(w, http.StatusOK, createResponse{SessionID: sess.ID})
}

// HandleList returns the caller's sessions, newest first.
//
// GET /api/sessions → 200 [{sessionId, title}]
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		h.API.Unauthenticated(w, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	summaries, err := h.Sessions.ListByOwner(ctx, user.ID)
	if err != nil {
		h.API.Internal(w, "list sessions", err)
		return
	}
	if summaries == nil {
		summaries = []models.SessionSummary{}
	}

	httpjson.Write(w, http.StatusOK, summaries)
}

// HandleStart transitions a session from created to started.
//
// POST /api/sessions/{id}/start → 200 {message}
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "start")
}

// HandleEnd transitions a session from started to ended.
//
// POST /api/sessions/{id}/end → 200 {message}
func (h *Handler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "end")
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op string) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		h.API.Unauthenticated(w, "authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if !sessionid.Valid(id) {
		// A malformed id cannot name any session.
		h.API.NotFound(w, "session not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	current, err := h.Sessions.GetByID(ctx, id)
	switch {
	case errors.Is(err, sessionstore.ErrNotFound):
		h.API.NotFound(w, "session not found")
		return
	case err != nil:
		h.API.Internal(w, op+" session", err)
		return
	}

	if current.OwnerID != user.ID {
		h.API.Forbidden(w, "only the session owner may "+op+" it")
		return
	}

	var msg string
	switch op {
	case "start":
		_, err = h.Sessions.Start(ctx, id)
		msg = "session started"
	case "end":
		_, err = h.Sessions.End(ctx, id)
		msg = "session ended"
	}

	switch {
	case errors.Is(err, sessionstore.ErrNotFound):
		h.API.NotFound(w, "session not found")
		return
	case errors.Is(err, sessionstore.ErrInvalidState):
		if op == "start" {
			h.API.InvalidState(w, "session cannot be started from its current state")
		} else {
			h.API.InvalidState(w, "session is not started")
		}
		return
	case err != nil:
		h.API.Internal(w, op+" session", err)
		return
	}

	h.Log.Info("session "+op,
		zap.String("session_id", id),
		zap.String("owner_id", user.ID))

	httpjson.Write(w, http.StatusOK, messageResponse{Message: msg})
}
