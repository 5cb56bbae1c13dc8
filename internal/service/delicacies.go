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

var delicacySearchCols = []string{"name", "description", "restaurant"}

var delicacySortable = map[string]bool{
	"name": true, "created_at": true, "updated_at": true,
	"rating": true, "review_count": true, "price": true,
}

var delicacyPatchCols = map[string]bool{
	"name": true, "description": true, "restaurant": true, "location": true,
	"category": true, "price": true, "images": true, "ingredients": true,
	"contact_number": true, "opening_hours": true, "rating": true,
	"review_count": true, "is_active": true, "featured": true,
}

var delicacyListCols = []string{"images", "ingredients"}

// DelicacyInput is the payload for creating a delicacy.
type DelicacyInput struct {
	Name          string   `json:"name" validate:"required,max=100"`
	Description   string   `json:"description" validate:"required,max=2000"`
	Restaurant    string   `json:"restaurant" validate:"required,max=255"`
	Location      string   `json:"location"`
	Category      string   `json:"category" validate:"required"`
	Price         float64  `json:"price"`
	Images        []string `json:"images"`
	Ingredients   []string `json:"ingredients"`
	ContactNumber string   `json:"contact_number"`
	OpeningHours  string   `json:"opening_hours"`
	Featured      bool     `json:"featured"`
}

// DelicacyList is the page a List call returns.
type DelicacyList struct {
	Data       []model.Delicacy `json:"data"`
	Pagination model.Pagination `json:"pagination"`
}

// Delicacies is the entity service for local food specialties. It mirrors
// the destinations service: permanent deletes, featured toggling, the same
// audit and notification pipeline.
type Delicacies struct {
	deps
}

// NewDelicacies creates the delicacies service.
func NewDelicacies(gw *gateway.Gateway, aud audit.Recorder, bus *notify.Bus, reg *config.Registry, logger *slog.Logger) *Delicacies {
	return &Delicacies{deps: newDeps(gw, aud, bus, reg, logger)}
}

// List returns a filtered, sorted page of delicacies.
func (s *Delicacies) List(ctx context.Context, opts ListOptions) (*DelicacyList, error) {
	if _, err := authz.RequireLoggedIn(ctx); err != nil {
		return nil, classify(err, "")
	}
	s.window(&opts)

	total, err := applyFilters(s.gw.From("delicacies"), opts, delicacySearchCols).Count(ctx)
	if err != nil {
		return nil, s.fail(err, "Failed to load delicacies")
	}

	col, dir := sortClause(opts, delicacySortable)
	from, to := pageRange(opts)
	rows := []model.Delicacy{}
	err = applyFilters(s.gw.From("delicacies"), opts, delicacySearchCols).
		OrderBy(col, dir).
		Range(from, to).
		All(ctx, &rows)
	if err != nil {
		return nil, s.fail(err, "Failed to load delicacies")
	}
	for i := range rows {
		rows[i].Normalize()
	}

	return &DelicacyList{Data: rows, Pagination: paginate(opts, total)}, nil
}

// Get returns a single delicacy by id.
func (s *Delicacies) Get(ctx context.Context, id string) (*model.Delicacy, error) {
	if _, err := authz.RequireLoggedIn(ctx); err != nil {
		return nil, classify(err, "")
	}
	return s.fetch(ctx, id)
}

// Create validates and inserts a new delicacy.
func (s *Delicacies) Create(ctx context.Context, in DelicacyInput) (*model.Delicacy, error) {
	actor, err := authz.RequireLoggedIn(ctx)
	if err != nil {
		return nil, classify(err, "")
	}

	if err := s.validate.Struct(in); err != nil {
		return nil, s.notify(validationError(err))
	}
	if !config.ValidCategory(s.reg.Categories.Delicacies, in.Category) {
		return nil, s.notify(E(KindValidationFailed, "Unknown delicacy category: "+in.Category))
	}
	if in.ContactNumber != "" && !s.reg.Validation.PhonePattern.MatchString(in.ContactNumber) {
		return nil, s.notify(E(KindValidationFailed, "Contact number is not a valid phone number"))
	}

	id := config.GenerateID("deli")
	now := nowISO()
	row := map[string]interface{}{
		"id":             id,
		"name":           in.Name,
		"description":    in.Description,
		"restaurant":     in.Restaurant,
		"location":       in.Location,
		"category":       in.Category,
		"price":          in.Price,
		"images":         model.StringList(in.Images),
		"ingredients":    model.StringList(in.Ingredients),
		"contact_number": in.ContactNumber,
		"opening_hours":  in.OpeningHours,
		"is_active":      true,
		"featured":       in.Featured,
		"created_at":     now,
		"updated_at":     now,
	}
	if err := s.gw.From("delicacies").Insert(ctx, row); err != nil {
		return nil, s.fail(err, "Failed to create delicacy")
	}

	created, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "create_delicacy",
		Table:      "delicacies",
		RecordID:   id,
		NewData:    toJSONObject(created),
		UserAgent:  userAgentFrom(ctx),
	})
	s.bus.Success("Delicacy " + created.Name + " created")
	return created, nil
}

// Update applies a partial patch, stamping updated_at and auditing the
// old/new snapshots.
func (s *Delicacies) Update(ctx context.Context, id string, patch map[string]interface{}) (*model.Delicacy, error) {
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

	if _, err := s.gw.From("delicacies").Eq("id", id).Update(ctx, cleaned); err != nil {
		return nil, s.fail(err, "Failed to update delicacy")
	}

	updated, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "update_delicacy",
		Table:      "delicacies",
		RecordID:   id,
		OldData:    toJSONObject(old),
		NewData:    toJSONObject(updated),
		UserAgent:  userAgentFrom(ctx),
	})
	s.bus.Success("Delicacy " + updated.Name + " updated")
	return updated, nil
}

// Delete permanently removes a delicacy.
func (s *Delicacies) Delete(ctx context.Context, id string) error {
	actor, err := authz.RequireLoggedIn(ctx)
	if err != nil {
		return classify(err, "")
	}

	old, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.gw.From("delicacies").Eq("id", id).Delete(ctx)
	if err != nil {
		return s.fail(err, "Failed to delete delicacy")
	}
	if n == 0 {
		return E(KindNotFound, "Delicacy not found")
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "permanent_delete_delicacy",
		Table:      "delicacies",
		RecordID:   id,
		OldData:    toJSONObject(old),
		UserAgent:  userAgentFrom(ctx),
	})
	s.bus.Success("Delicacy " + old.Name + " permanently deleted")
	return nil
}

// ToggleFeatured flips the featured flag.
func (s *Delicacies) ToggleFeatured(ctx context.Context, id string) (*model.Delicacy, error) {
	actor, err := authz.RequireLoggedIn(ctx)
	if err != nil {
		return nil, classify(err, "")
	}

	current, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	next := !current.Featured
	_, err = s.gw.From("delicacies").Eq("id", id).Update(ctx, map[string]interface{}{
		"featured":   next,
		"updated_at": nowISO(),
	})
	if err != nil {
		return nil, s.fail(err, "Failed to update delicacy")
	}

	updated, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "toggle_featured_delicacy",
		Table:      "delicacies",
		RecordID:   id,
		NewData:    model.JSONObject{"featured": next},
		UserAgent:  userAgentFrom(ctx),
	})
	return updated, nil
}

// Statistics summarizes the delicacies table.
func (s *Delicacies) Statistics(ctx context.Context) (*model.Statistics, error) {
	if _, err := authz.RequireLoggedIn(ctx); err != nil {
		return nil, classify(err, "")
	}
	return tableStatistics(ctx, s.gw, "delicacies")
}

// Export renders all delicacies, newest first, as JSON or CSV.
func (s *Delicacies) Export(ctx context.Context, format string) ([]byte, error) {
	actor, err := authz.RequireLoggedIn(ctx)
	if err != nil {
		return nil, classify(err, "")
	}

	rows := []model.Delicacy{}
	err = s.gw.From("delicacies").OrderBy("created_at", "desc").All(ctx, &rows)
	if err != nil {
		return nil, s.fail(err, "Failed to export delicacies")
	}
	for i := range rows {
		rows[i].Normalize()
	}

	records := make([]exportRecord, len(rows))
	for i, d := range rows {
		records[i] = exportRecord{
			ID: d.ID, Name: d.Name, Place: d.Restaurant, Category: d.Category,
			Rating: d.Rating, Reviews: d.ReviewCount,
			Featured: d.Featured, Active: d.IsActive, CreatedAt: d.CreatedAt,
		}
	}

	out, err := renderExport(format, "Restaurant", records, rows)
	if err != nil {
		return nil, s.notify(classify(err, "Failed to export delicacies"))
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "export_delicacy",
		Table:      "delicacies",
		NewData:    model.JSONObject{"format": format, "count": len(rows)},
		UserAgent:  userAgentFrom(ctx),
	})
	return out, nil
}

func (s *Delicacies) fetch(ctx context.Context, id string) (*model.Delicacy, error) {
	var d model.Delicacy
	if err := s.gw.From("delicacies").Eq("id", id).One(ctx, &d); err != nil {
		if classified := classify(err, ""); classified.Kind == KindNotFound {
			return nil, E(KindNotFound, "Delicacy not found")
		}
		return nil, s.fail(err, "Failed to load delicacy")
	}
	d.Normalize()
	return &d, nil
}

func (s *Delicacies) cleanPatch(patch map[string]interface{}) (map[string]interface{}, *Error) {
	cleaned := make(map[string]interface{}, len(patch))
	for key, val := range patch {
		if !delicacyPatchCols[key] {
			continue
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
	if cat, ok := cleaned["category"].(string); ok && !config.ValidCategory(s.reg.Categories.Delicacies, cat) {
		return nil, E(KindValidationFailed, "Unknown delicacy category: "+cat)
	}

	encodeListColumns(cleaned, delicacyListCols)
	return cleaned, nil
}

func (s *Delicacies) fail(err error, fallback string) *Error {
	return s.notify(classify(err, fallback))
}

func (s *Delicacies) notify(err *Error) *Error {
	s.bus.Error(err.Message)
	return err
}
