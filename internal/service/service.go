// Package service implements the entity services of the admin console:
// destinations, delicacies, end users, and admin accounts. Every operation
// follows the same pipeline: authorization gate, gateway query, row
// normalization, audit entry, result envelope, notification. Nothing
// throws across the package boundary.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cebutourist/sugbo/internal/audit"
	"github.com/cebutourist/sugbo/internal/config"
	"github.com/cebutourist/sugbo/internal/gateway"
	"github.com/cebutourist/sugbo/internal/model"
	"github.com/cebutourist/sugbo/internal/notify"
)

// ListOptions are the filters and window every list operation accepts.
// Featured and Active are tri-state: nil means "don't filter".
type ListOptions struct {
	Search    string
	Category  string
	Featured  *bool
	Active    *bool
	DateFrom  *time.Time
	DateTo    *time.Time
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// deps bundles the collaborators shared by every entity service.
type deps struct {
	gw       *gateway.Gateway
	aud      audit.Recorder
	bus      *notify.Bus
	reg      *config.Registry
	validate *validator.Validate
	logger   *slog.Logger
}

func newDeps(gw *gateway.Gateway, aud audit.Recorder, bus *notify.Bus, reg *config.Registry, logger *slog.Logger) deps {
	return deps{
		gw:       gw,
		aud:      aud,
		bus:      bus,
		reg:      reg,
		validate: validator.New(),
		logger:   logger,
	}
}

// window clamps pagination to the configured page-size options: page >= 1,
// limit one of the options (default otherwise).
func (d deps) window(opts *ListOptions) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if !d.reg.ValidPageSize(opts.Limit) {
		opts.Limit = d.reg.Pagination.DefaultPageSize
	}
}

// sortClause resolves the requested sort against a whitelist, defaulting to
// created_at desc.
func sortClause(opts ListOptions, sortable map[string]bool) (string, string) {
	col := opts.SortBy
	if !sortable[col] {
		col = "created_at"
	}
	dir := opts.SortOrder
	if dir != "asc" && dir != "desc" {
		dir = "desc"
	}
	return col, dir
}

// applyFilters attaches the common list filters to a fresh query. The same
// function serves both the count and the page query so they can never
// disagree.
func applyFilters(q *gateway.Query, opts ListOptions, searchCols []string) *gateway.Query {
	if opts.Search != "" {
		q = q.ILikeOr(searchCols, opts.Search)
	}
	if opts.Category != "" && opts.Category != "all" {
		q = q.Eq("category", opts.Category)
	}
	if opts.Featured != nil {
		q = q.Eq("featured", *opts.Featured)
	}
	if opts.Active != nil {
		q = q.Eq("is_active", *opts.Active)
	}
	if opts.DateFrom != nil {
		q = q.Gte("created_at", *opts.DateFrom)
	}
	if opts.DateTo != nil {
		q = q.Lte("created_at", *opts.DateTo)
	}
	return q
}

// paginate computes the exact-total pagination block. TotalPages is
// ceil(total/limit); a page past the end simply yields an empty window.
func paginate(opts ListOptions, total int64) model.Pagination {
	totalPages := int((total + int64(opts.Limit) - 1) / int64(opts.Limit))
	return model.Pagination{
		Page:       opts.Page,
		Limit:      opts.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// pageRange converts 1-based page/limit into the gateway's inclusive row
// range.
func pageRange(opts ListOptions) (int, int) {
	from := (opts.Page - 1) * opts.Limit
	return from, from + opts.Limit - 1
}

// nowISO is the client-side wall clock stamp written to updated_at on every
// mutation.
func nowISO() time.Time { return time.Now().UTC() }

// toJSONObject snapshots any value into the loose map shape audit payloads
// use. Credential-bearing structs must be sanitized before reaching this.
func toJSONObject(v interface{}) model.JSONObject {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// validationError renders a validator failure into a single human-readable
// message naming the first offending field.
func validationError(err error) *Error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		f := verrs[0]
		switch f.Tag() {
		case "required":
			return E(KindValidationFailed, fmt.Sprintf("Field %q is required", f.Field()))
		case "max":
			return E(KindValidationFailed, fmt.Sprintf("Field %q exceeds the maximum length of %s", f.Field(), f.Param()))
		case "email":
			return E(KindValidationFailed, fmt.Sprintf("Field %q must be a valid email address", f.Field()))
		default:
			return E(KindValidationFailed, fmt.Sprintf("Field %q is invalid", f.Field()))
		}
	}
	return E(KindValidationFailed, "Validation failed: "+err.Error())
}

// userAgentFrom pulls the caller's user agent off the context for audit
// entries; the CLI and tests leave it empty.
func userAgentFrom(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey).(string); ok {
		return ua
	}
	return ""
}

type uaContextKey string

const userAgentKey uaContextKey = "user_agent"

// WithUserAgent attaches the caller's user agent to the context so audit
// entries can record it.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey, ua)
}
