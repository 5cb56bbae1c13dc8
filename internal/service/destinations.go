package service

import (
	"context"
	"log/slog"

	"github.com/cebutourist/sugbo/internal/audit"
	"github.com/cebutourist/sugbo/internal/authz"
	"github.com/cebutourist/sugbo/internal/config"
	"github.com/cebutourist/sugbo/internal/gateway"
	"github.com/cebutourist/sugbo/internal/model"
	"github.com/cebutourist/sugbo/internal/notify"
)

// destinationSearchCols are the columns the free-text search ORs across.
var destinationSearchCols = []string{"name", "description", "location"}

// destinationSortable whitelists sortBy values.
var destinationSortable = map[string]bool{
	"name": true, "created_at": true, "updated_at": true,
	"rating": true, "review_count": true, "entrance_fee": true,
}

// destinationPatchCols whitelists columns an update patch may touch.
// Read-only fields (id, created_at) are never in this set.
var destinationPatchCols = map[string]bool{
	"name": true, "description": true, "location": true, "category": true,
	"latitude": true, "longitude": true, "images": true, "entrance_fee": true,
	"opening_hours": true, "contact_number": true, "website": true,
	"amenities": true, "accessibility_features": true, "best_time_to_visit": true,
	"duration": true, "difficulty_level": true, "rating": true,
	"review_count": true, "is_active": true, "featured": true,
}

// destinationListCols are the JSON-array columns needing re-encoding when
// they arrive in a patch.
var destinationListCols = []string{"images", "amenities", "accessibility_features"}

// DestinationInput is the payload for creating a destination.
type DestinationInput struct {
	Name                  string   `json:"name" validate:"required,max=100"`
	Description           string   `json:"description" validate:"required,max=2000"`
	Location              string   `json:"location" validate:"required,max=255"`
	Category              string   `json:"category" validate:"required"`
	Latitude              float64  `json:"latitude"`
	Longitude             float64  `json:"longitude"`
	Images                []string `json:"images"`
	EntranceFee           float64  `json:"entrance_fee"`
	OpeningHours          string   `json:"opening_hours"`
	ContactNumber         string   `json:"contact_number"`
	Website               string   `json:"website"`
	Amenities             []string `json:"amenities"`
	AccessibilityFeatures []string `json:"accessibility_features"`
	BestTimeToVisit       string   `json:"best_time_to_visit"`
	Duration              string   `json:"duration"`
	DifficultyLevel       string   `json:"difficulty_level"`
	Featured              bool     `json:"featured"`
}

// DestinationList is the page a List call returns.
type DestinationList struct {
	Data       []model.Destination `json:"data"`
	Pagination model.Pagination    `json:"pagination"`
}

// Destinations is the entity service for tourist attractions.
type Destinations struct {
	deps
}

// NewDestinations creates the destinations service.
func NewDestinations(gw *gateway.Gateway, aud audit.Recorder, bus *notify.Bus, reg *config.Registry, logger *slog.Logger) *Destinations {
	return &Destinations{deps: newDeps(gw, aud, bus, reg, logger)}
}

// List returns a filtered, sorted page of destinations together with the
// exact total behind it.
func (s *Destinations) List(ctx context.Context, opts ListOptions) (*DestinationList, error) {
	if _, err := authz.RequireLoggedIn(ctx); err != nil {
		return nil, classify(err, "")
	}
	s.window(&opts)

	total, err := applyFilters(s.gw.From("destinations"), opts, destinationSearchCols).Count(ctx)
	if err != nil {
		return nil, s.fail(err, "Failed to load destinations")
	}

	col, dir := sortClause(opts, destinationSortable)
	from, to := pageRange(opts)
	rows := []model.Destination{}
	err = applyFilters(s.gw.From("destinations"), opts, destinationSearchCols).
		OrderBy(col, dir).
		Range(from, to).
		All(ctx, &rows)
	if err != nil {
		return nil, s.fail(err, "Failed to load destinations")
	}
	for i := range rows {
		rows[i].Normalize()
	}

	return &DestinationList{Data: rows, Pagination: paginate(opts, total)}, nil
}

// Get returns a single destination by id.
func (s *Destinations) Get(ctx context.Context, id string) (*model.Destination, error) {
	if _, err := authz.RequireLoggedIn(ctx); err != nil {
		return nil, classify(err, "")
	}
	return s.fetch(ctx, id)
}

// Create validates and inserts a new destination, auditing the new payload.
func (s *Destinations) Create(ctx context.Context, in DestinationInput) (*model.Destination, error) {
	actor, err := authz.RequireLoggedIn(ctx)
	if err != nil {
		return nil, classify(err, "")
	}

	if err := s.validate.Struct(in); err != nil {
		return nil, s.notify(validationError(err))
	}
	if !config.ValidCategory(s.reg.Categories.Destinations, in.Category) {
		return nil, s.notify(E(KindValidationFailed, "Unknown destination category: "+in.Category))
	}
	if in.ContactNumber != "" && !s.reg.Validation.PhonePattern.MatchString(in.ContactNumber) {
		return nil, s.notify(E(KindValidationFailed, "Contact number is not a valid phone number"))
	}

	id := config.GenerateID("dest")
	now := nowISO()
	row := map[string]interface{}{
		"id":                     id,
		"name":                   in.Name,
		"description":            in.Description,
		"location":               in.Location,
		"category":               in.Category,
		"latitude":               in.Latitude,
		"longitude":              in.Longitude,
		"images":                 model.StringList(in.Images),
		"entrance_fee":           in.EntranceFee,
		"opening_hours":          in.OpeningHours,
		"contact_number":         in.ContactNumber,
		"website":                in.Website,
		"amenities":              model.StringList(in.Amenities),
		"accessibility_features": model.StringList(in.AccessibilityFeatures),
		"best_time_to_visit":     in.BestTimeToVisit,
		"duration":               in.Duration,
		"difficulty_level":       normalizedDifficulty(in.DifficultyLevel),
		"is_active":              true,
		"featured":               in.Featured,
		"created_at":             now,
		"updated_at":             now,
	}
	if err := s.gw.From("destinations").Insert(ctx, row); err != nil {
		return nil, s.fail(err, "Failed to create destination")
	}

	created, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "create_destination",
		Table:      "destinations",
		RecordID:   id,
		NewData:    toJSONObject(created),
		UserAgent:  userAgentFrom(ctx),
	})
	s.bus.Success("Destination " + created.Name + " created")
	return created, nil
}

// Update applies a partial patch. Read-only fields are stripped, updated_at
// is stamped, and the audit entry carries both the old and new snapshots.
func (s *Destinations) Update(ctx context.Context, id string, patch map[string]interface{}) (*model.Destination, error) {
	actor, err := authz.RequireLoggedIn(ctx)
	if err != nil {
		return nil, classify(err, "")
	}

	old, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	cleaned, verr := s.cleanPatch(patch)
	if verr != nil {
		return nil, s.notify(verr)
	}
	cleaned["updated_at"] = nowISO()

	if _, err := s.gw.From("destinations").Eq("id", id).Update(ctx, cleaned); err != nil {
		return nil, s.fail(err, "Failed to update destination")
	}

	updated, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "update_destination",
		Table:      "destinations",
		RecordID:   id,
		OldData:    toJSONObject(old),
		NewData:    toJSONObject(updated),
		UserAgent:  userAgentFrom(ctx),
	})
	s.bus.Success("Destination " + updated.Name + " updated")
	return updated, nil
}

// Delete permanently removes a destination. There is no restore path; the
// audit entry keeps the final snapshot.
func (s *Destinations) Delete(ctx context.Context, id string) error {
	actor, err := authz.RequireLoggedIn(ctx)
	if err != nil {
		return classify(err, "")
	}

	old, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.gw.From("destinations").Eq("id", id).Delete(ctx)
	if err != nil {
		return s.fail(err, "Failed to delete destination")
	}
	if n == 0 {
		return E(KindNotFound, "Destination not found")
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "permanent_delete_destination",
		Table:      "destinations",
		RecordID:   id,
		OldData:    toJSONObject(old),
		UserAgent:  userAgentFrom(ctx),
	})
	s.bus.Success("Destination " + old.Name + " permanently deleted")
	return nil
}

// ToggleFeatured flips the featured flag. Two calls return the record to
// its original state and produce two audit rows.
func (s *Destinations) ToggleFeatured(ctx context.Context, id string) (*model.Destination, error) {
	actor, err := authz.RequireLoggedIn(ctx)
	if err != nil {
		return nil, classify(err, "")
	}

	current, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	next := !current.Featured
	_, err = s.gw.From("destinations").Eq("id", id).Update(ctx, map[string]interface{}{
		"featured":   next,
		"updated_at": nowISO(),
	})
	if err != nil {
		return nil, s.fail(err, "Failed to update destination")
	}

	updated, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "toggle_featured_destination",
		Table:      "destinations",
		RecordID:   id,
		NewData:    model.JSONObject{"featured": next},
		UserAgent:  userAgentFrom(ctx),
	})
	return updated, nil
}

// Statistics summarizes the destinations table using count queries plus a
// single streamed pass over active categories.
func (s *Destinations) Statistics(ctx context.Context) (*model.Statistics, error) {
	if _, err := authz.RequireLoggedIn(ctx); err != nil {
		return nil, classify(err, "")
	}
	return tableStatistics(ctx, s.gw, "destinations")
}

// Export renders all destinations, newest first, as JSON or CSV.
func (s *Destinations) Export(ctx context.Context, format string) ([]byte, error) {
	actor, err := authz.RequireLoggedIn(ctx)
	if err != nil {
		return nil, classify(err, "")
	}

	rows := []model.Destination{}
	err = s.gw.From("destinations").OrderBy("created_at", "desc").All(ctx, &rows)
	if err != nil {
		return nil, s.fail(err, "Failed to export destinations")
	}
	for i := range rows {
		rows[i].Normalize()
	}

	records := make([]exportRecord, len(rows))
	for i, d := range rows {
		records[i] = exportRecord{
			ID: d.ID, Name: d.Name, Place: d.Location, Category: d.Category,
			Rating: d.Rating, Reviews: d.ReviewCount,
			Featured: d.Featured, Active: d.IsActive, CreatedAt: d.CreatedAt,
		}
	}

	out, err := renderExport(format, "Location", records, rows)
	if err != nil {
		return nil, s.notify(classify(err, "Failed to export destinations"))
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "export_destination",
		Table:      "destinations",
		NewData:    model.JSONObject{"format": format, "count": len(rows)},
		UserAgent:  userAgentFrom(ctx),
	})
	return out, nil
}

// fetch loads and normalizes one row.
func (s *Destinations) fetch(ctx context.Context, id string) (*model.Destination, error) {
	var d model.Destination
	if err := s.gw.From("destinations").Eq("id", id).One(ctx, &d); err != nil {
		if classified := classify(err, ""); classified.Kind == KindNotFound {
			return nil, E(KindNotFound, "Destination not found")
		}
		return nil, s.fail(err, "Failed to load destination")
	}
	d.Normalize()
	return &d, nil
}

// cleanPatch whitelists patch columns, re-encodes JSON-array values, and
// enforces the config length ceilings on free-text fields.
func (s *Destinations) cleanPatch(patch map[string]interface{}) (map[string]interface{}, *Error) {
	cleaned := make(map[string]interface{}, len(patch))
	for key, val := range patch {
		if !destinationPatchCols[key] {
			continue // read-only or unknown columns are stripped
		}
		cleaned[key] = val
	}

	if name, ok := cleaned["name"].(string); ok {
		if name == "" {
			return nil, E(KindValidationFailed, `Field "name" is required`)
		}
		if len(name) > s.reg.Validation.NameMaxLength {
			return nil, E(KindValidationFailed, `Field "name" exceeds the maximum length`)
		}
	}
	if desc, ok := cleaned["description"].(string); ok && len(desc) > s.reg.Validation.DescriptionMaxLength {
		return nil, E(KindValidationFailed, `Field "description" exceeds the maximum length`)
	}
	if cat, ok := cleaned["category"].(string); ok && !config.ValidCategory(s.reg.Categories.Destinations, cat) {
		return nil, E(KindValidationFailed, "Unknown destination category: "+cat)
	}

	encodeListColumns(cleaned, destinationListCols)
	return cleaned, nil
}

func (s *Destinations) fail(err error, fallback string) *Error {
	return s.notify(classify(err, fallback))
}

func (s *Destinations) notify(err *Error) *Error {
	s.bus.Error(err.Message)
	return err
}

func normalizedDifficulty(level string) string {
	switch level {
	case model.DifficultyModerate, model.DifficultyChallenging, model.DifficultyExtreme:
		return level
	default:
		return model.DifficultyEasy
	}
}
