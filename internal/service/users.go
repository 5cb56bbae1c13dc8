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

var userSearchCols = []string{"name", "email", "phone"}

var userSortable = map[string]bool{
	"name": true, "email": true, "created_at": true,
	"updated_at": true, "review_count": true,
}

var userPatchCols = map[string]bool{
	"name": true, "email": true, "phone": true, "address": true,
	"gender": true, "birth_date": true, "favorites": true,
	"review_count": true,
}

// UserInput is the payload for creating an end-user profile.
type UserInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Gender  string `json:"gender"`
}

// UserList is the page a List call returns.
type UserList struct {
	Data       []model.User     `json:"data"`
	Pagination model.Pagination `json:"pagination"`
}

// Users is the entity service for mobile-app user profiles. Users are only
// ever soft-deleted and can be restored.
type Users struct {
	deps
}

// NewUsers creates the users service.
func NewUsers(gw *gateway.Gateway, aud audit.Recorder, bus *notify.Bus, reg *config.Registry, logger *slog.Logger) *Users {
	return &Users{deps: newDeps(gw, aud, bus, reg, logger)}
}

// List returns a filtered, sorted page of users. The category filter does
// not apply to profiles and is ignored.
func (s *Users) List(ctx context.Context, opts ListOptions) (*UserList, error) {
	if _, err := authz.RequireLoggedIn(ctx); err != nil {
		return nil, classify(err, "")
	}
	s.window(&opts)
	opts.Category = ""
	opts.Featured = nil

	total, err := applyFilters(s.gw.From("users"), opts, userSearchCols).Count(ctx)
	if err != nil {
		return nil, s.fail(err, "Failed to load users")
	}

	col, dir := sortClause(opts, userSortable)
	from, to := pageRange(opts)
	rows := []model.User{}
	err = applyFilters(s.gw.From("users"), opts, userSearchCols).
		OrderBy(col, dir).
		Range(from, to).
		All(ctx, &rows)
	if err != nil {
		return nil, s.fail(err, "Failed to load users")
	}
	for i := range rows {
		rows[i].Normalize()
	}

	return &UserList{Data: rows, Pagination: paginate(opts, total)}, nil
}

// Get returns a single user by id.
func (s *Users) Get(ctx context.Context, id string) (*model.User, error) {
	if _, err := authz.RequireLoggedIn(ctx); err != nil {
		return nil, classify(err, "")
	}
	return s.fetch(ctx, id)
}

// Create validates and inserts a new user profile. A duplicate email is a
// conflict.
func (s *Users) Create(ctx context.Context, in UserInput) (*model.User, error) {
	actor, err := authz.RequireLoggedIn(ctx)
	if err != nil {
		return nil, classify(err, "")
	}

	if err := s.validate.Struct(in); err != nil {
		return nil, s.notify(validationError(err))
	}
	if in.Phone != "" && !s.reg.Validation.PhonePattern.MatchString(in.Phone) {
		return nil, s.notify(E(KindValidationFailed, "Phone is not a valid phone number"))
	}

	id := config.GenerateID("user")
	now := nowISO()
	row := map[string]interface{}{
		"id":         id,
		"name":       in.Name,
		"email":      in.Email,
		"phone":      in.Phone,
		"address":    in.Address,
		"gender":     in.Gender,
		"is_active":  true,
		"created_at": now,
		"updated_at": now,
	}
	if err := s.gw.From("users").Insert(ctx, row); err != nil {
		return nil, s.fail(err, "Failed to create user")
	}

	created, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "create_user",
		Table:      "users",
		RecordID:   id,
		NewData:    toJSONObject(created),
		UserAgent:  userAgentFrom(ctx),
	})
	s.bus.Success("User " + created.Name + " created")
	return created, nil
}

// Update applies a partial patch to a user profile.
func (s *Users) Update(ctx context.Context, id string, patch map[string]interface{}) (*model.User, error) {
	actor, err := authz.RequireLoggedIn(ctx)
	if err != nil {
		return nil, classify(err, "")
	}

	old, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	cleaned := make(map[string]interface{}, len(patch))
	for key, val := range patch {
		if !userPatchCols[key] {
			continue
		}
		cleaned[key] = val
	}
	if phone, ok := cleaned["phone"].(string); ok && phone != "" && !s.reg.Validation.PhonePattern.MatchString(phone) {
		return nil, s.notify(E(KindValidationFailed, "Phone is not a valid phone number"))
	}
	encodeListColumns(cleaned, []string{"favorites"})
	cleaned["updated_at"] = nowISO()

	if _, err := s.gw.From("users").Eq("id", id).Update(ctx, cleaned); err != nil {
		return nil, s.fail(err, "Failed to update user")
	}

	updated, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "update_user",
		Table:      "users",
		RecordID:   id,
		OldData:    toJSONObject(old),
		NewData:    toJSONObject(updated),
		UserAgent:  userAgentFrom(ctx),
	})
	s.bus.Success("User " + updated.Name + " updated")
	return updated, nil
}

// Delete soft-deletes a user: is_active flips to false and deactivated_at
// is stamped. The record remains queryable and restorable.
func (s *Users) Delete(ctx context.Context, id string) error {
	actor, err := authz.RequireLoggedIn(ctx)
	if err != nil {
		return classify(err, "")
	}

	old, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}

	now := nowISO()
	_, err = s.gw.From("users").Eq("id", id).Update(ctx, map[string]interface{}{
		"is_active":      false,
		"deactivated_at": now,
		"updated_at":     now,
	})
	if err != nil {
		return s.fail(err, "Failed to deactivate user")
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "delete_user",
		Table:      "users",
		RecordID:   id,
		OldData:    toJSONObject(old),
		UserAgent:  userAgentFrom(ctx),
	})
	s.bus.Success("User " + old.Name + " deactivated")
	return nil
}

// Restore reactivates a soft-deleted user: is_active returns to true,
// reactivated_at is stamped, deactivated_at is cleared. Restoring an
// already-active user is a no-op success.
func (s *Users) Restore(ctx context.Context, id string) (*model.User, error) {
	actor, err := authz.RequireLoggedIn(ctx)
	if err != nil {
		return nil, classify(err, "")
	}

	old, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if old.IsActive {
		return old, nil
	}

	now := nowISO()
	_, err = s.gw.From("users").Eq("id", id).Update(ctx, map[string]interface{}{
		"is_active":      true,
		"reactivated_at": now,
		"deactivated_at": nil,
		"updated_at":     now,
	})
	if err != nil {
		return nil, s.fail(err, "Failed to restore user")
	}

	restored, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "restore_user",
		Table:      "users",
		RecordID:   id,
		NewData:    toJSONObject(restored),
		UserAgent:  userAgentFrom(ctx),
	})
	s.bus.Success("User " + restored.Name + " restored")
	return restored, nil
}

// Statistics summarizes the users table. Profiles carry no category or
// featured flag, so those parts stay empty.
func (s *Users) Statistics(ctx context.Context) (*model.Statistics, error) {
	if _, err := authz.RequireLoggedIn(ctx); err != nil {
		return nil, classify(err, "")
	}

	total, err := s.gw.From("users").Count(ctx)
	if err != nil {
		return nil, s.fail(err, "Failed to load statistics")
	}
	active, err := s.gw.From("users").Eq("is_active", true).Count(ctx)
	if err != nil {
		return nil, s.fail(err, "Failed to load statistics")
	}

	return &model.Statistics{
		Total:      total,
		Active:     active,
		Inactive:   total - active,
		ByCategory: map[string]int64{},
	}, nil
}

func (s *Users) fetch(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := s.gw.From("users").Eq("id", id).One(ctx, &u); err != nil {
		if classified := classify(err, ""); classified.Kind == KindNotFound {
			return nil, E(KindNotFound, "User not found")
		}
		return nil, s.fail(err, "Failed to load user")
	}
	u.Normalize()
	return &u, nil
}

func (s *Users) fail(err error, fallback string) *Error {
	return s.notify(classify(err, fallback))
}

func (s *Users) notify(err *Error) *Error {
	s.bus.Error(err.Message)
	return err
}
