package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mtlprog/pageserve/internal/static"
)

// Handler serves the index page from disk.
type Handler struct {
	indexPath string
}

// New creates a Handler that serves the file at indexPath.
// Relative paths are resolved against the working directory at request time.
func New(indexPath string) *Handler {
	return &Handler{indexPath: indexPath}
}

// RegisterRoutes registers all HTTP routes.
// Only the exact root path is handled; the mux answers everything else
// with its default 404 and 405 responses.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
}

// handleIndex returns the current contents of the index file.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	res, err := static.ServeFile(h.indexPath)
	if err != nil {
		status, message := mapServeError(err)
		if status == http.StatusNotFound {
			slog.Debug("index file missing", "path", h.indexPath)
		} else {
			slog.Error("failed to read index file", "path", h.indexPath, "error", err)
		}
		http.Error(w, message, status)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Body)))
	w.WriteHeader(res.Status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(res.Body); err != nil {
		slog.Debug("failed to write response body", "error", err)
	}
}
