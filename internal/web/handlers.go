package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/tabstash/internal/api"
	"github.com/hpungsan/tabstash/internal/capture"
	"github.com/hpungsan/tabstash/internal/errors"
	"github.com/hpungsan/tabstash/internal/export"
)

// maxBodyBytes bounds action request bodies.
const maxBodyBytes = 1 << 20

// Handlers contains the HTTP route handlers.
type Handlers struct {
	d        *api.Dispatcher
	captures *capture.Store
	version  string
}

// IndexInfo is the GET / response.
type IndexInfo struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Actions []string `json:"actions"`
}

// HandleIndex handles GET / with a service description.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, IndexInfo{
		Name:    "tabstash",
		Version: h.version,
		Actions: api.Actions(),
	})
}

// HandleAction handles POST /actions/{action}: the JSON body is the action's
// argument object, the response is the handler result or a structured error.
func (h *Handlers) HandleAction(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")

	var args map[string]any
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, errors.NewInvalidRequest("failed to read request body"))
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			writeError(w, errors.NewInvalidRequest("request body must be a JSON object"))
			return
		}
	}

	result, err := h.d.Dispatch(r.Context(), action, args)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleExport handles GET /export: ?format=html renders the digest through
// goldmark, anything else downloads the markdown.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.captures.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	md := export.Markdown(data, time.Now())

	if r.URL.Query().Get("format") == "html" {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(md), &buf); err != nil {
			writeError(w, errors.NewInternal(err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		buf.WriteTo(w)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "tabstash-export.md"))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, md)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps structured errors to their HTTP status; anything else is
// reported as a generic internal error.
func writeError(w http.ResponseWriter, err error) {
	var sErr *errors.StashError
	if !stderrors.As(err, &sErr) {
		sErr = errors.NewInternal(err)
	}

	errorObj := map[string]any{
		"code":    sErr.Code,
		"message": sErr.Message,
		"status":  sErr.Status,
	}
	if sErr.Code != errors.ErrInternal && sErr.Details != nil {
		errorObj["details"] = sErr.Details
	}
	writeJSON(w, sErr.Status, map[string]any{"error": errorObj})
}
