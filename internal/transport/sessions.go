package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rpggio/projtrack/internal/domain/activity"
	"github.com/rpggio/projtrack/internal/domain/project"
	"github.com/rpggio/projtrack/internal/domain/session"
)

type openSessionBody struct {
	SessionID string `json:"session_id"`
	Variant   string `json:"variant"`
	IDPolicy  string `json:"id_policy"`
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var body openSessionBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, s.logger, err)
		return
	}

	req := session.OpenRequest{ID: body.SessionID}
	if body.Variant != "" {
		variant, err := project.ParseVariant(body.Variant)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		req.Variant = variant
	}
	if body.IDPolicy != "" {
		policy, err := project.ParseIDPolicy(body.IDPolicy)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		req.IDPolicy = policy
	}

	sess, err := s.svc.Sessions.Open(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("X-Session-Id", sess.ID)
	writeJSON(w, http.StatusCreated, session.SessionInfo{Session: *sess})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.svc.Sessions.Get(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Sessions.Close(r.Context(), SessionIDFromContext(r.Context())); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := activity.ListActivityOptions{
		SessionID: SessionIDFromContext(r.Context()),
		Limit:     20,
	}
	var err error
	if v := q.Get("limit"); v != "" {
		if opts.Limit, err = strconv.Atoi(v); err != nil || opts.Limit <= 0 {
			writeError(w, s.logger, fmt.Errorf("limit %q: %w", v, project.ErrInvalidInput))
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if opts.Offset, err = strconv.Atoi(v); err != nil || opts.Offset < 0 {
			writeError(w, s.logger, fmt.Errorf("offset %q: %w", v, project.ErrInvalidInput))
			return
		}
	}
	if v := q.Get("project_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		opts.ProjectID = &id
	}
	if v := q.Get("type"); v != "" {
		typ := activity.ActivityType(v)
		opts.ActivityType = &typ
	}

	entries, err := s.svc.Activity.GetRecentActivity(r.Context(), opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if entries == nil {
		entries = []activity.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// decodeJSON reads a JSON body. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decoding body: %v: %w", err, project.ErrInvalidInput)
	}
	return nil
}

func parseID(v string) (int64, error) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("project id %q: %w", v, project.ErrInvalidInput)
	}
	return id, nil
}
