package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/swaralaya/scoreboard/internal/adapters/repository"
	"github.com/swaralaya/scoreboard/internal/domain/model"
)

// adminTokenHeader carries the shared display-hall secret. This gate hides
// the admin routes from casual visitors; it is not a security boundary.
const adminTokenHeader = "X-Admin-Token"

// requireAdmin rejects requests without the shared secret.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "api.admin_gate"
		if s.adminPassword == "" || !secretEqual(r.Header.Get(adminTokenHeader), s.adminPassword) {
			writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	}
}

func secretEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	OK bool `json:"ok"`
}

// handleLogin handles POST /admin/login: it checks the password so the
// display page can reveal the admin surface.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_login"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if s.adminPassword == "" || !secretEqual(req.Password, s.adminPassword) {
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{OK: true})
}

// handlePutRecord handles POST /admin/records: upsert one score record.
// The ID is optional; a missing one is assigned.
func (s *Server) handlePutRecord(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_record"
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var rec model.ScoreRecord
	if err := decodeJSON(r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateRecord(rec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	stored, err := s.deps.PutRecord(r.Context(), rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// handleDeleteRecord handles DELETE /admin/records/{id}.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_record"
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/admin/records/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := s.deps.DeleteRecord(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePutSlide handles POST /admin/events: upsert one event slide.
func (s *Server) handlePutSlide(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_slide"
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var slide model.Slide
	if err := decodeJSON(r, &slide); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(slide.Name) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	stored, err := s.deps.PutSlide(r.Context(), slide)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// handleDeleteSlide handles DELETE /admin/events/{id}.
func (s *Server) handleDeleteSlide(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_slide"
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/admin/events/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := s.deps.DeleteSlide(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validateRecord checks the fields the admin surface must supply. House and
// category membership is not enforced here; unrecognized values are the
// aggregator's silent-drop concern, and rejecting them would block entering
// data ahead of a configuration change.
func validateRecord(rec model.ScoreRecord) error {
	switch {
	case strings.TrimSpace(rec.House) == "":
		return errors.New("missing house")
	case strings.TrimSpace(rec.Item) == "":
		return errors.New("missing item")
	case strings.TrimSpace(rec.Category) == "":
		return errors.New("missing category")
	}
	return nil
}
