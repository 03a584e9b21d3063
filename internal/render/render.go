// Package render writes JSON responses and maps coded errors to statuses.
package render

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/georgemunganga/pulse-backend/pkg/errutil"
	"github.com/go-chi/chi/v5/middleware"
)

// JSON writes body as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Error writes err as {"error": ..., "code": ...}. Failures that map to 500
// are logged with their full context and hidden from the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := errutil.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		errutil.LogError(slog.Default().With("request_id", middleware.GetReqID(r.Context())),
			"request failed", err)
	}
	body := map[string]string{"error": errutil.PublicMessage(err)}
	if code := errutil.Code(err); code != "" && status != http.StatusInternalServerError {
		body["code"] = code
	}
	JSON(w, status, body)
}

// BadRequest writes a 400 for malformed request bodies.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, map[string]string{"error": msg, "code": errutil.CodeInvalidInput})
}
