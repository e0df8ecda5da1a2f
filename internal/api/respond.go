package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// decodeBody reads a JSON object body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return badRequest("request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

// parseMarketID accepts a JSON number, a JSON string, or a raw query value.
func parseMarketID(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, `"`)
	if raw == "" || raw == "null" {
		return 0, badRequest("marketId is required")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, badRequest("invalid marketId %q", raw)
	}
	return id, nil
}

func marketIDFromBody(w http.ResponseWriter, r *http.Request) (uint64, error) {
	var body struct {
		MarketID json.RawMessage `json:"marketId"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		return 0, err
	}
	return parseMarketID(string(body.MarketID))
}

func marketIDFromQuery(r *http.Request) (uint64, error) {
	return parseMarketID(r.URL.Query().Get("marketId"))
}
