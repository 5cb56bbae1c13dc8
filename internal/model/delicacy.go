package model

import "time"

// Delicacy is a local food specialty, keyed on the restaurant that serves it
// and its price. Like destinations, delicacy deletion is permanent.
type Delicacy struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Description  string     `json:"description" db:"description"`
	Restaurant   string     `json:"restaurant" db:"restaurant"`
	Location     string     `json:"location" db:"location"`
	Category     string     `json:"category" db:"category"`
	Price        float64    `json:"price" db:"price"`
	Images       StringList `json:"images" db:"images"`
	Ingredients  StringList `json:"ingredients" db:"ingredients"`
	ContactNumber string    `json:"contact_number" db:"contact_number"`
	OpeningHours string     `json:"opening_hours" db:"opening_hours"`
	Rating       float64    `json:"rating" db:"rating"`
	ReviewCount  int64      `json:"review_count" db:"review_count"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	Featured     bool       `json:"featured" db:"featured"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Normalize fills documented defaults for optional delicacy fields.
func (d *Delicacy) Normalize() {
	if d.Images == nil {
		d.Images = StringList{}
	}
	if d.Ingredients == nil {
		d.Ingredients = StringList{}
	}
	if d.Rating < 0 {
		d.Rating = 0
	}
	if d.ReviewCount < 0 {
		d.ReviewCount = 0
	}
	if d.Price < 0 {
		d.Price = 0
	}
}
