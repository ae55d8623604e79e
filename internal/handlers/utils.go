package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/jason-s-yu/gamenight/internal/middleware"
	"github.com/jason-s-yu/gamenight/internal/models"
)

// writeJSON encodes v with the given status. The status is already sent when
// encoding fails, so the failure is only logged.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		middleware.LoggerFrom(r.Context()).WithError(err).Warn("failed to write response")
	}
}

// writeContext keeps the request's values but not its cancellation, so a
// client that hangs up cannot abort a slot write halfway through a mutation.
func writeContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// decodeBody decodes the request body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// parseWeight maps a request weight to a model weight. Unknown or empty input
// yields "" which the catalog treats as Light.
func parseWeight(s string) models.Weight {
	w, _ := models.ParseWeight(s)
	return w
}

func parseWeights(in []string) []models.Weight {
	out := make([]models.Weight, 0, len(in))
	for _, s := range in {
		if w, ok := models.ParseWeight(s); ok {
			out = append(out, w)
		}
	}
	return out
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
