package config

import (
	"regexp"
	"time"

	"github.com/spf13/viper"
)

// Registry is the central immutable configuration for the admin backend.
// It is built once at startup (from defaults, the YAML config file, and
// SUGBO_* environment variables via viper) and passed explicitly through
// the service layer; tests supply their own scoped Registry.
type Registry struct {
	API        APIConfig
	Auth       AuthConfig
	Pagination PaginationConfig
	Upload     UploadConfig
	Categories CategoryConfig
	Validation ValidationConfig
}

// APIConfig holds backend endpoint settings.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	Retries int // advisory; the gateway does not retry
}

// AuthConfig holds session and login policy knobs.
type AuthConfig struct {
	SessionTimeout         time.Duration
	MaxLoginAttempts       int
	LockoutDuration        time.Duration
	RequiredPasswordLength int
	JWTSecret              string
}

// PaginationConfig holds list windowing defaults.
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	PageSizeOptions []int
}

// UploadConfig holds image upload limits.
type UploadConfig struct {
	MaxFileSize       int64
	AllowedImageTypes []string
	ImageQuality      float64
	MaxImageDimension int
}

// CategoryConfig holds the fixed category vocabularies.
type CategoryConfig struct {
	Destinations []string
	Delicacies   []string
}

// ValidationConfig holds field-level validation rules applied by the entity
// services before any insert or update.
type ValidationConfig struct {
	NameMaxLength        int
	DescriptionMaxLength int
	RequiredDestination  []string
	RequiredDelicacy     []string
	RequiredUser         []string
	PhonePattern         *regexp.Regexp
}

// phonePattern accepts E.164-style numbers with an optional leading plus.
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)

// Default returns the built-in Registry used when no config file overrides
// anything. All knobs of the deployed console are represented here.
func Default() *Registry {
	return &Registry{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 10 * time.Second,
			Retries: 3,
		},
		Auth: AuthConfig{
			SessionTimeout:         time.Hour,
			MaxLoginAttempts:       5,
			LockoutDuration:        15 * time.Minute,
			RequiredPasswordLength: 8,
		},
		Pagination: PaginationConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
			PageSizeOptions: []int{10, 20, 50, 100},
		},
		Upload: UploadConfig{
			MaxFileSize:       5 * 1024 * 1024,
			AllowedImageTypes: []string{"image/jpeg", "image/png", "image/webp"},
			ImageQuality:      0.8,
			MaxImageDimension: 1920,
		},
		Categories: CategoryConfig{
			Destinations: []string{
				"Beaches", "Mountains", "Waterfalls", "Historical Sites",
				"Museums", "Parks", "Islands", "Adventure", "Religious Sites",
			},
			Delicacies: []string{
				"Main Dish", "Street Food", "Dessert", "Snack",
				"Seafood", "Beverage", "Pastry",
			},
		},
		Validation: ValidationConfig{
			NameMaxLength:        100,
			DescriptionMaxLength: 2000,
			RequiredDestination:  []string{"name", "description", "location", "category"},
			RequiredDelicacy:     []string{"name", "description", "restaurant", "category"},
			RequiredUser:         []string{"name", "email"},
			PhonePattern:         phonePattern,
		},
	}
}

// FromViper builds a Registry from the given viper instance layered over the
// defaults. Only knobs present in the file or environment are overridden.
func FromViper(v *viper.Viper) *Registry {
	reg := Default()

	if v.IsSet("api.base_url") {
		reg.API.BaseURL = v.GetString("api.base_url")
	}
	if v.IsSet("api.timeout_ms") {
		reg.API.Timeout = time.Duration(v.GetInt64("api.timeout_ms")) * time.Millisecond
	}
	if v.IsSet("api.retries") {
		reg.API.Retries = v.GetInt("api.retries")
	}
	if v.IsSet("auth.session_timeout_ms") {
		reg.Auth.SessionTimeout = time.Duration(v.GetInt64("auth.session_timeout_ms")) * time.Millisecond
	}
	if v.IsSet("auth.max_login_attempts") {
		reg.Auth.MaxLoginAttempts = v.GetInt("auth.max_login_attempts")
	}
	if v.IsSet("auth.lockout_duration_ms") {
		reg.Auth.LockoutDuration = time.Duration(v.GetInt64("auth.lockout_duration_ms")) * time.Millisecond
	}
	if v.IsSet("auth.required_password_length") {
		reg.Auth.RequiredPasswordLength = v.GetInt("auth.required_password_length")
	}
	if v.IsSet("auth.jwt_secret") {
		reg.Auth.JWTSecret = v.GetString("auth.jwt_secret")
	}
	if v.IsSet("pagination.default_page_size") {
		reg.Pagination.DefaultPageSize = v.GetInt("pagination.default_page_size")
	}
	if v.IsSet("pagination.max_page_size") {
		reg.Pagination.MaxPageSize = v.GetInt("pagination.max_page_size")
	}
	return reg
}

// ValidPageSize reports whether limit is one of the configured page size
// options.
func (r *Registry) ValidPageSize(limit int) bool {
	for _, opt := range r.Pagination.PageSizeOptions {
		if limit == opt {
			return true
		}
	}
	return false
}

// ValidCategory reports whether cat belongs to the given vocabulary.
func ValidCategory(vocabulary []string, cat string) bool {
	for _, c := range vocabulary {
		if c == cat {
			return true
		}
	}
	return false
}
