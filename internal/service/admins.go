package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cebutourist/sugbo/internal/audit"
	"github.com/cebutourist/sugbo/internal/auth"
	"github.com/cebutourist/sugbo/internal/authz"
	"github.com/cebutourist/sugbo/internal/config"
	"github.com/cebutourist/sugbo/internal/gateway"
	"github.com/cebutourist/sugbo/internal/model"
	"github.com/cebutourist/sugbo/internal/notify"
)

// AdminInput is the payload for creating an admin account. Only
// super-admins may manage admin accounts.
type AdminInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
	Role     string `json:"role"`
}

// AdminList is the page a List call returns. Credential digests never
// appear in it.
type AdminList struct {
	Data       []model.Admin    `json:"data"`
	Pagination model.Pagination `json:"pagination"`
}

// Admins is the entity service for administrator accounts. All admin CRUD
// routes through the backend; there is no in-memory admin list. Admins are
// deactivated, never deleted.
type Admins struct {
	deps
}

// NewAdmins creates the admins service.
func NewAdmins(gw *gateway.Gateway, aud audit.Recorder, bus *notify.Bus, reg *config.Registry, logger *slog.Logger) *Admins {
	return &Admins{deps: newDeps(gw, aud, bus, reg, logger)}
}

// List returns a page of admin accounts, newest first, with credentials
// stripped.
func (s *Admins) List(ctx context.Context, opts ListOptions) (*AdminList, error) {
	if _, err := authz.RequireRole(ctx, model.RoleSuperAdmin); err != nil {
		return nil, classify(err, "")
	}
	s.window(&opts)
	opts.Category = ""
	opts.Featured = nil

	total, err := applyFilters(s.gw.From("admin_users"), opts, []string{"name", "email"}).Count(ctx)
	if err != nil {
		return nil, s.fail(err, "Failed to load admins")
	}

	col, dir := sortClause(opts, map[string]bool{
		"name": true, "email": true, "created_at": true, "last_login_at": true,
	})
	from, to := pageRange(opts)
	rows := []model.Admin{}
	err = applyFilters(s.gw.From("admin_users"), opts, []string{"name", "email"}).
		OrderBy(col, dir).
		Range(from, to).
		All(ctx, &rows)
	if err != nil {
		return nil, s.fail(err, "Failed to load admins")
	}
	for i := range rows {
		rows[i] = rows[i].Sanitized()
	}

	return &AdminList{Data: rows, Pagination: paginate(opts, total)}, nil
}

// Get returns a single admin, credential stripped.
func (s *Admins) Get(ctx context.Context, id int64) (*model.Admin, error) {
	if _, err := authz.RequireRole(ctx, model.RoleSuperAdmin); err != nil {
		return nil, classify(err, "")
	}
	return s.fetch(ctx, id)
}

// Create inserts a new admin account with a digested credential. Duplicate
// emails are a conflict; weak passwords fail validation.
func (s *Admins) Create(ctx context.Context, in AdminInput) (*model.Admin, error) {
	actor, err := authz.RequireRole(ctx, model.RoleSuperAdmin)
	if err != nil {
		return nil, classify(err, "")
	}

	if err := s.validate.Struct(in); err != nil {
		return nil, s.notify(validationError(err))
	}
	if len(in.Password) < s.reg.Auth.RequiredPasswordLength {
		return nil, s.notify(E(KindValidationFailed,
			fmt.Sprintf("Password must be at least %d characters", s.reg.Auth.RequiredPasswordLength)))
	}
	role := in.Role
	if role == "" {
		role = model.RoleAdmin
	}
	if role != model.RoleAdmin && role != model.RoleSuperAdmin {
		return nil, s.notify(E(KindValidationFailed, "Unknown role: "+role))
	}

	now := nowISO()
	row := map[string]interface{}{
		"email":         in.Email,
		"password_hash": auth.Digest(in.Password),
		"name":          in.Name,
		"role":          role,
		"is_active":     true,
		"created_at":    now,
		"updated_at":    now,
	}
	if err := s.gw.From("admin_users").Insert(ctx, row); err != nil {
		return nil, s.fail(err, "Failed to create admin")
	}

	var created model.Admin
	if err := s.gw.From("admin_users").Eq("email", in.Email).One(ctx, &created); err != nil {
		return nil, s.fail(err, "Failed to load created admin")
	}
	sanitized := created.Sanitized()

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "create_admin",
		Table:      "admin_users",
		RecordID:   fmt.Sprintf("%d", created.ID),
		NewData:    toJSONObject(sanitized),
		UserAgent:  userAgentFrom(ctx),
	})
	s.bus.Success("Admin account " + in.Email + " created")
	return &sanitized, nil
}

// Update applies a partial patch to an admin account. A "password" key is
// digested into password_hash; the raw value never reaches the gateway or
// the audit log.
func (s *Admins) Update(ctx context.Context, id int64, patch map[string]interface{}) (*model.Admin, error) {
	actor, err := authz.RequireRole(ctx, model.RoleSuperAdmin)
	if err != nil {
		return nil, classify(err, "")
	}

	old, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	cleaned := make(map[string]interface{}, len(patch))
	for key, val := range patch {
		switch key {
		case "name", "email", "is_active":
			cleaned[key] = val
		case "role":
			role, _ := val.(string)
			if role != model.RoleAdmin && role != model.RoleSuperAdmin {
				return nil, s.notify(E(KindValidationFailed, "Unknown role: "+role))
			}
			cleaned[key] = role
		case "password":
			pw, _ := val.(string)
			if len(pw) < s.reg.Auth.RequiredPasswordLength {
				return nil, s.notify(E(KindValidationFailed,
					fmt.Sprintf("Password must be at least %d characters", s.reg.Auth.RequiredPasswordLength)))
			}
			cleaned["password_hash"] = auth.Digest(pw)
		}
	}
	cleaned["updated_at"] = nowISO()

	if _, err := s.gw.From("admin_users").Eq("id", id).Update(ctx, cleaned); err != nil {
		return nil, s.fail(err, "Failed to update admin")
	}

	updated, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "update_admin",
		Table:      "admin_users",
		RecordID:   fmt.Sprintf("%d", id),
		OldData:    toJSONObject(old),
		NewData:    toJSONObject(updated),
		UserAgent:  userAgentFrom(ctx),
	})
	s.bus.Success("Admin account " + updated.Email + " updated")
	return updated, nil
}

// Delete deactivates an admin account. Admin rows are never removed, and a
// super-admin may not deactivate themselves.
func (s *Admins) Delete(ctx context.Context, id int64) error {
	actor, err := authz.RequireRole(ctx, model.RoleSuperAdmin)
	if err != nil {
		return classify(err, "")
	}
	if actor.ID == id {
		return s.notify(E(KindForbidden, "You cannot deactivate your own account"))
	}

	old, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}

	now := nowISO()
	_, err = s.gw.From("admin_users").Eq("id", id).Update(ctx, map[string]interface{}{
		"is_active":      false,
		"deactivated_at": now,
		"updated_at":     now,
	})
	if err != nil {
		return s.fail(err, "Failed to deactivate admin")
	}

	s.aud.Record(ctx, audit.Entry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     "delete_admin",
		Table:      "admin_users",
		RecordID:   fmt.Sprintf("%d", id),
		OldData:    toJSONObject(old),
		UserAgent:  userAgentFrom(ctx),
	})
	s.bus.Success("Admin account " + old.Email + " deactivated")
	return nil
}

// fetch loads one admin with the credential stripped.
func (s *Admins) fetch(ctx context.Context, id int64) (*model.Admin, error) {
	var a model.Admin
	if err := s.gw.From("admin_users").Eq("id", id).One(ctx, &a); err != nil {
		if classified := classify(err, ""); classified.Kind == KindNotFound {
			return nil, E(KindNotFound, "Admin not found")
		}
		return nil, s.fail(err, "Failed to load admin")
	}
	sanitized := a.Sanitized()
	return &sanitized, nil
}

func (s *Admins) fail(err error, fallback string) *Error {
	return s.notify(classify(err, fallback))
}

func (s *Admins) notify(err *Error) *Error {
	s.bus.Error(err.Message)
	return err
}
