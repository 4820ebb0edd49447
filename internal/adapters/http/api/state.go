package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/samemean/internal/adapters/session"
	"github.com/okian/samemean/internal/domain/selection"
)

// maxActionBody bounds POST /api/actions bodies.
const maxActionBody = 4 << 10

// StateHandler exposes a widget instance over JSON. The instance is the one
// named by the session cookie; a fresh one is mounted when it is missing.
type StateHandler struct {
	deps       Dependencies
	cookieName string
}

// NewStateHandler creates a new state handler.
func NewStateHandler(deps Dependencies, cookieName string) *StateHandler {
	return &StateHandler{deps: deps, cookieName: cookieName}
}

// actionRequest mirrors the OpenAPI schema for POST /api/actions.
type actionRequest struct {
	Action    string `json:"action"`
	DatasetID string `json:"dataset_id"`
}

func (a actionRequest) validate() (selection.Action, error) {
	action, err := selection.ParseAction(a.Action)
	if err != nil {
		return "", err
	}
	if action == selection.ActionSelect && strings.TrimSpace(a.DatasetID) == "" {
		return "", fmt.Errorf("%w: missing dataset_id", ErrBadRequest)
	}
	return action, nil
}

type stateResponse struct {
	SessionID string          `json:"session_id"`
	State     selection.State `json:"state"`
}

// HandleGetState handles GET /api/state.
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	sid, st, err := h.mount(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{SessionID: sid, State: st})
}

// HandlePostAction handles POST /api/actions.
func (h *StateHandler) HandlePostAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	action, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	sid, _, err := h.mount(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	st, err := h.deps.Apply(r.Context(), sid, action, strings.TrimSpace(req.DatasetID))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{SessionID: sid, State: st})
}

func (h *StateHandler) mount(w http.ResponseWriter, r *http.Request) (string, selection.State, error) {
	cookieID := session.FromRequest(r, h.cookieName)
	sid, st, _, err := h.deps.Mount(r.Context(), cookieID)
	if err != nil {
		return "", selection.State{}, err
	}
	// Reissued on every request so the cookie expires with the session.
	session.SetCookie(w, h.cookieName, sid, h.deps.SessionTTL())
	return sid, st, nil
}
