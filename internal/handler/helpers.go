package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cebutourist/sugbo/internal/model"
	"github.com/cebutourist/sugbo/internal/service"
)

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a structured error response using the standard error
// envelope.
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, model.ErrorResponse{
		Error: model.ErrorDetail{Code: code, Message: message},
	})
}

// writeResult folds a service outcome into the uniform {ok, data|error}
// envelope, mapping service error kinds to HTTP status codes.
func writeResult(w http.ResponseWriter, data interface{}, err error) {
	if err != nil {
		writeJSON(w, service.HTTPStatus(err), service.Envelope(nil, err))
		return
	}
	writeJSON(w, http.StatusOK, service.Envelope(data, nil))
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// queryInt extracts an integer query parameter, returning defaultVal if the
// parameter is missing or cannot be parsed.
func queryInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// queryBool extracts a tri-state boolean query parameter: nil when absent,
// otherwise a pointer to the parsed value.
func queryBool(r *http.Request, key string) *bool {
	switch r.URL.Query().Get(key) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	default:
		return nil
	}
}

// queryTime extracts an RFC 3339 timestamp query parameter, nil when absent
// or unparsable.
func queryTime(r *http.Request, key string) *time.Time {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

// listOptions builds the common list filters from the request's query
// string. Out-of-range page and limit values are clamped by the service.
func listOptions(r *http.Request) service.ListOptions {
	q := r.URL.Query()
	return service.ListOptions{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		Featured:  queryBool(r, "featured"),
		Active:    queryBool(r, "active"),
		DateFrom:  queryTime(r, "date_from"),
		DateTo:    queryTime(r, "date_to"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      queryInt(r, "page", 1),
		Limit:     queryInt(r, "limit", 0),
	}
}

// exportFormat resolves the requested export format, defaulting to JSON.
func exportFormat(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return "json"
}
