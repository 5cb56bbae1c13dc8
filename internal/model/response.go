package model

// Result is the uniform envelope every service operation resolves to:
// {ok: true, data} on success or {ok: false, error} on failure. Nothing
// throws across the service boundary.
type Result struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Pagination describes the window a list operation returned and the exact
// total behind it. TotalPages is always ceil(Total/Limit).
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Statistics summarizes an entity table: overall and active totals, the
// derived inactive count, featured rows among active ones, and a histogram
// of active rows per category.
type Statistics struct {
	Total      int64            `json:"total"`
	Active     int64            `json:"active"`
	Inactive   int64            `json:"inactive"`
	Featured   int64            `json:"featured"`
	ByCategory map[string]int64 `json:"by_category"`
}

// ErrorResponse is the standard envelope for HTTP error responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the structured error information returned by the API.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
