package model

import "time"

// Difficulty levels for destinations. DifficultyEasy is the normalization
// default when a row carries no recognized value.
const (
	DifficultyEasy        = "Easy"
	DifficultyModerate    = "Moderate"
	DifficultyChallenging = "Challenging"
	DifficultyExtreme     = "Extreme"
)

// Destination is a tourist attraction record. Deletion of destinations is
// permanent; there is no soft-delete or restore path.
type Destination struct {
	ID                     string     `json:"id" db:"id"`
	Name                   string     `json:"name" db:"name"`
	Description            string     `json:"description" db:"description"`
	Location               string     `json:"location" db:"location"`
	Category               string     `json:"category" db:"category"`
	Latitude               float64    `json:"-" db:"latitude"`
	Longitude              float64    `json:"-" db:"longitude"`
	Coordinates            Coordinates `json:"coordinates" db:"-"`
	Images                 StringList `json:"images" db:"images"`
	EntranceFee            float64    `json:"entrance_fee" db:"entrance_fee"`
	OpeningHours           string     `json:"opening_hours" db:"opening_hours"`
	ContactNumber          string     `json:"contact_number" db:"contact_number"`
	Website                string     `json:"website" db:"website"`
	Amenities              StringList `json:"amenities" db:"amenities"`
	AccessibilityFeatures  StringList `json:"accessibility_features" db:"accessibility_features"`
	BestTimeToVisit        string     `json:"best_time_to_visit" db:"best_time_to_visit"`
	Duration               string     `json:"duration" db:"duration"`
	DifficultyLevel        string     `json:"difficulty_level" db:"difficulty_level"`
	Rating                 float64    `json:"rating" db:"rating"`
	ReviewCount            int64      `json:"review_count" db:"review_count"`
	IsActive               bool       `json:"is_active" db:"is_active"`
	Featured               bool       `json:"featured" db:"featured"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
}

// validDifficulties guards normalization against arbitrary stored values.
var validDifficulties = map[string]bool{
	DifficultyEasy:        true,
	DifficultyModerate:    true,
	DifficultyChallenging: true,
	DifficultyExtreme:     true,
}

// Normalize fills documented defaults for optional fields so callers never
// see partially-populated rows: difficulty falls back to Easy, coordinates
// to {0,0}, and negative counters are clamped to zero.
func (d *Destination) Normalize() {
	if !validDifficulties[d.DifficultyLevel] {
		d.DifficultyLevel = DifficultyEasy
	}
	d.Coordinates = Coordinates{Lat: d.Latitude, Lng: d.Longitude}
	if d.Images == nil {
		d.Images = StringList{}
	}
	if d.Amenities == nil {
		d.Amenities = StringList{}
	}
	if d.AccessibilityFeatures == nil {
		d.AccessibilityFeatures = StringList{}
	}
	if d.Rating < 0 {
		d.Rating = 0
	}
	if d.ReviewCount < 0 {
		d.ReviewCount = 0
	}
	if d.EntranceFee < 0 {
		d.EntranceFee = 0
	}
}
