package transport

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/projtrack/internal/domain/project"
	"github.com/rpggio/projtrack/internal/view"
)

type projectBody struct {
	Project view.Project `json:"project"`
	Message string       `json:"message,omitempty"`
}

type statusBody struct {
	Status string `json:"status"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, err := view.ListOptions(q.Get("status"), q.Get("sort"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	projects, err := s.svc.Projects.Query(r.Context(), SessionIDFromContext(r.Context()), opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"projects": view.Projects(projects),
		"count":    len(projects),
	})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	proj, err := s.svc.Projects.Get(r.Context(), SessionIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, projectBody{Project: view.ProjectOf(*proj)})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in view.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, s.logger, err)
		return
	}
	req, err := in.Request()
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	proj, err := s.svc.Projects.Create(r.Context(), SessionIDFromContext(r.Context()), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/projects/%d", proj.ID))
	writeJSON(w, http.StatusCreated, projectBody{
		Project: view.ProjectOf(*proj),
		Message: fmt.Sprintf("Project '%s' added successfully!", proj.Name),
	})
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var in view.PatchInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, s.logger, err)
		return
	}
	patch, err := in.Patch()
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	proj, err := s.svc.Projects.Update(r.Context(), SessionIDFromContext(r.Context()), id, patch)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, projectBody{Project: view.ProjectOf(*proj)})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var body statusBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, s.logger, err)
		return
	}
	status, err := project.ParseStatus(body.Status)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	proj, err := s.svc.Projects.UpdateStatus(r.Context(), SessionIDFromContext(r.Context()), id, status)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, projectBody{Project: view.ProjectOf(*proj)})
}

// handleSetAttachment accepts a multipart upload and keeps only the file name.
func (s *Server) handleSetAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, s.logger, fmt.Errorf("reading upload: %v: %w", err, project.ErrInvalidInput))
		return
	}
	file.Close()

	name := filepath.Base(strings.TrimSpace(header.Filename))
	if name == "." || name == string(filepath.Separator) {
		writeError(w, s.logger, fmt.Errorf("upload has no file name: %w", project.ErrInvalidInput))
		return
	}
	proj, err := s.svc.Projects.SetAttachment(r.Context(), SessionIDFromContext(r.Context()), id, name)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, projectBody{Project: view.ProjectOf(*proj)})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	sessionID := SessionIDFromContext(r.Context())
	if r.URL.Query().Get("strict") == "true" {
		_, err = s.svc.Projects.DeleteStrict(r.Context(), sessionID, id)
	} else {
		_, err = s.svc.Projects.Delete(r.Context(), sessionID, id)
	}
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearProjects(w http.ResponseWriter, r *http.Request) {
	removed, err := s.svc.Projects.ClearAll(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.Projects.Export(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "projects.csv"}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleImport takes the CSV either as the raw body or as the multipart field "file".
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var src io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, s.logger, fmt.Errorf("reading upload: %v: %w", err, project.ErrInvalidInput))
			return
		}
		defer file.Close()
		src = file
	}

	data, err := io.ReadAll(src)
	if err != nil {
		writeError(w, s.logger, fmt.Errorf("reading csv: %v: %w", err, project.ErrInvalidInput))
		return
	}
	n, err := s.svc.Projects.Import(r.Context(), SessionIDFromContext(r.Context()), data)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}
