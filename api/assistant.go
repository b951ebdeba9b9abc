/*
assistant.go - Assistant tool endpoints

PURPOSE:
  Exposes the text tools of package assistant over HTTP. Each call runs one
  tool and appends the exchange to a bounded session history, so a chat
  front end can replay a conversation.

ENDPOINTS:
  GET    /api/assistant/tools              List tool names
  POST   /api/assistant/tools/{tool}       Run a tool (body optional)
  GET    /api/assistant/sessions/{id}      Session history
  DELETE /api/assistant/sessions/{id}      Forget a session

SEE ALSO:
  - assistant/tools.go: tool output formats
  - assistant/session.go: history bounds and expiry
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/payroll-engine/assistant"
	"github.com/warp/payroll-engine/generic"
)

func (h *Handler) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": assistant.Names()})
}

// RunTool runs one tool. A missing session_id starts a new session.
func (h *Handler) RunTool(w http.ResponseWriter, r *http.Request) {
	var req ToolRequest
	if err := h.decodeOptional(r, &req); err != nil {
		h.fail(w, r, "Invalid tool request", err)
		return
	}
	e, err := h.engineFor(r)
	if err != nil {
		h.fail(w, r, "Invalid tool request", err)
		return
	}
	tools := &assistant.Tools{Engine: e, Directory: h.Store, Results: h.Store}
	call := assistant.Request{
		Tool:     chi.URLParam(r, "tool"),
		WorkerID: generic.EntityID(req.WorkerID),
		Year:     req.Year,
		Month:    req.Month,
	}
	out, err := tools.Run(r.Context(), call)
	if err != nil {
		h.fail(w, r, "Tool failed", err)
		return
	}

	session := req.SessionID
	if session == "" {
		session = uuid.NewString()
	}
	history := h.Sessions.Record(session, call, out, time.Now())
	writeJSON(w, http.StatusOK, ToolResponse{
		SessionID: session,
		Tool:      call.Tool,
		Output:    out,
		Turns:     len(history) / 2,
	})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	history, ok := h.Sessions.History(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, SessionDTO{ID: id, Messages: history})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.Sessions.Delete(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "Session not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// decodeOptional is decode for endpoints whose body may be empty.
func (h *Handler) decodeOptional(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fieldError("body", "invalid JSON: "+err.Error())
	}
	return h.check(dst)
}
