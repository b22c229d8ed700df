package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"lhist/internal/history"
)

// APIError represents an error response.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// versionJSON is the wire form of one version record.
type versionJSON struct {
	Timestamp time.Time `json:"timestamp"`
	Folder    string    `json:"folder"`
	Size      int64     `json:"size"`
}

// fileJSON is the wire form of one recoverable file.
type fileJSON struct {
	Path            string        `json:"path"`
	LatestTimestamp time.Time     `json:"latestTimestamp"`
	Versions        []versionJSON `json:"versions"`
}

// contentJSON is the wire form of a version's content.
type contentJSON struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
}

// getProjectParam extracts and URL-decodes the project path parameter.
func getProjectParam(r *http.Request) string {
	raw := chi.URLParam(r, "project")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.Error("encoding JSON response", "error", err)
		}
	}
}

// respondError writes an error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, APIError{Error: http.StatusText(status), Message: message})
}

// handleHealth returns the health status of the service.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleListProjects returns the sorted project names in the index.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	names, err := s.cache.ListProjects()
	if err != nil {
		// The index is still served; an unreadable store just means empty.
		s.logger.Warn("listing projects from degraded index", "error", err)
	}
	if names == nil {
		names = []string{}
	}
	s.respondJSON(w, http.StatusOK, names)
}

// handleListFiles returns the recoverable files of one project, sorted by
// path. Unknown projects yield an empty list, mirroring the query layer.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	project := getProjectParam(r)

	files, err := s.cache.FilesFor(project)
	if err != nil {
		s.logger.Warn("listing files from degraded index", "error", err)
	}

	out := make([]fileJSON, 0, len(files))
	for _, f := range files {
		fj := fileJSON{
			Path:            f.OriginalPath,
			LatestTimestamp: f.LatestTimestamp,
			Versions:        make([]versionJSON, 0, len(f.Versions)),
		}
		for _, v := range f.Versions {
			fj.Versions = append(fj.Versions, versionJSON{
				Timestamp: v.Timestamp,
				Folder:    v.TrackingFolderID,
				Size:      v.Size,
			})
		}
		out = append(out, fj)
	}
	slices.SortFunc(out, func(a, b fileJSON) int {
		return strings.Compare(a.Path, b.Path)
	})

	s.respondJSON(w, http.StatusOK, out)
}

// handleGetContent returns the text of one version of a file. Query
// parameters: path (required, the original path), version (optional index
// into the newest-first version list, default 0).
func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	project := getProjectParam(r)
	path := r.URL.Query().Get("path")
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}

	files, err := s.cache.FilesFor(project)
	if err != nil {
		s.logger.Warn("reading content from degraded index", "error", err)
	}
	file, ok := files[path]
	if !ok {
		s.respondError(w, http.StatusNotFound, "no history for "+path)
		return
	}

	n := 0
	if v := r.URL.Query().Get("version"); v != "" {
		parsed, err := parseVersionIndex(v, len(file.Versions))
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		n = parsed
	}

	rec := file.Versions[n]
	s.respondJSON(w, http.StatusOK, contentJSON{
		Path:      file.OriginalPath,
		Timestamp: rec.Timestamp,
		Content:   history.ReadContent(rec),
	})
}

// handleRefresh marks the index stale; the next query rebuilds it.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.cache.Invalidate()
	s.respondJSON(w, http.StatusAccepted, map[string]string{"status": "stale"})
}
