package model

import "time"

// User is an end-user profile from the mobile app. Users are never removed:
// "deletion" flips is_active and stamps deactivated_at, and the record stays
// queryable and restorable.
type User struct {
	ID            string     `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Email         string     `json:"email" db:"email"`
	Phone         string     `json:"phone" db:"phone"`
	Address       string     `json:"address" db:"address"`
	Gender        string     `json:"gender" db:"gender"`
	BirthDate     *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	Favorites     StringList `json:"favorites" db:"favorites"`
	ReviewCount   int64      `json:"review_count" db:"review_count"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty" db:"deactivated_at"`
	ReactivatedAt *time.Time `json:"reactivated_at,omitempty" db:"reactivated_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Normalize fills documented defaults for optional user fields.
func (u *User) Normalize() {
	if u.Favorites == nil {
		u.Favorites = StringList{}
	}
	if u.ReviewCount < 0 {
		u.ReviewCount = 0
	}
}
