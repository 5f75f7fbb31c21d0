package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"loanimport/internal/core"
	"loanimport/internal/logging"
)

// handleUpload accepts a multipart form with a "file" part, runs the import
// pipeline, and returns the full import result.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondError(w, r, http.StatusRequestEntityTooLarge,
				"file exceeds the maximum upload size", err)
			return
		}
		s.respondError(w, r, http.StatusBadRequest,
			`multipart form with a "file" part is required`, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "could not read uploaded file", err)
		return
	}

	logger.Info("upload received", "filename", header.Filename, "size", len(data))

	result, err := s.service.Import(r.Context(), data)
	if err != nil {
		s.respondImportError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListLoaners returns every persisted record in natural order.
func (s *Server) handleListLoaners(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.ListLoaners(r.Context())
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "could not load records", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(recs),
		"data":  recs,
	})
}

// handleHealth reports process liveness and, when a pinger is wired,
// database connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}

	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			logging.FromContext(r.Context()).Error("health check failed", "error", err)
			status["status"] = "degraded"
			status["database"] = "unreachable"
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}

// respondImportError maps pipeline errors to HTTP statuses and the
// user-facing message taxonomy.
func (s *Server) respondImportError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var mapErr *core.MappingError
	switch {
	case errors.Is(err, core.ErrEmptyInput),
		errors.Is(err, core.ErrUnreadableFormat),
		errors.As(err, &mapErr):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyImports):
		status = http.StatusTooManyRequests
	}

	msg := core.MapError(err)
	logging.FromContext(r.Context()).Error("import failed",
		"error", err, "code", msg.Code, "status", status)

	writeJSON(w, status, map[string]string{
		"error":  msg.Message,
		"action": msg.Action,
		"code":   msg.Code,
	})
}

// respondError writes a sanitized JSON error; the technical detail stays in
// the server logs.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	logging.FromContext(r.Context()).Error("request failed",
		"error", err, "status", status)

	writeJSON(w, status, map[string]string{"error": message})
}

// writeJSON encodes v as JSON and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; nothing to do but log.
		slog.Error("json encode failed", "error", err)
	}
}
