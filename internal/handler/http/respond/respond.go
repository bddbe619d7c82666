// Package respond writes JSON responses and error bodies for the HTTP handlers.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"news-aggregator/internal/domain/entity"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

const hiddenMessage = "internal server error"

// JSON writes v with the given status. A nil v sends headers only.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// ヘッダー送信済みのためログのみ
		slog.Error("failed to encode JSON response", slog.Int("status_code", code), slog.Any("error", err))
	}
}

// Error sends err's message unfiltered. Use it only for errors built from
// client input.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, ErrorBody{Error: err.Error()})
}

// Fragments of messages that describe the caller's own mistake.
var clientFragments = []string{
	"required",
	"invalid",
	"not found",
	"must be",
	"out of range",
	"rate limit",
	"too large",
}

// SafeError sends err's message only when it is a client error: a 4xx whose
// error is an entity.ValidationError or reads like one. Everything else,
// every 5xx included, becomes "internal server error" and is logged with
// credentials masked.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if msg, ok := clientMessage(code, err); ok {
		JSON(w, code, ErrorBody{Error: msg})
		return
	}

	slog.Error("request failed",
		slog.Int("code", code),
		slog.String("status", http.StatusText(code)),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, ErrorBody{Error: hiddenMessage})
}

func clientMessage(code int, err error) (string, bool) {
	if code >= http.StatusInternalServerError {
		return "", false
	}
	var ve *entity.ValidationError
	if errors.As(err, &ve) {
		return ve.Error(), true
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	if slices.ContainsFunc(clientFragments, func(f string) bool { return strings.Contains(lower, f) }) {
		return msg, true
	}
	return "", false
}
