package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestAdminSanitized(t *testing.T) {
	a := Admin{ID: 1, Email: "admin@cebutourist.ph", PasswordHash: "deadbeef"}
	s := a.Sanitized()
	if s.PasswordHash != "" {
		t.Errorf("sanitized admin still carries a digest: %q", s.PasswordHash)
	}
	if a.PasswordHash != "deadbeef" {
		t.Error("Sanitized mutated the receiver")
	}
}

func TestAdminNeverMarshalsDigest(t *testing.T) {
	a := Admin{ID: 1, Email: "admin@cebutourist.ph", PasswordHash: "deadbeef"}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "deadbeef") {
		t.Errorf("digest leaked into JSON: %s", data)
	}
}

func TestAdminHasRole(t *testing.T) {
	tests := []struct {
		role string
		want string
		ok   bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleSuperAdmin, RoleAdmin, true}, // super_admin satisfies the baseline
		{RoleAdmin, RoleSuperAdmin, false},
		{RoleSuperAdmin, RoleSuperAdmin, true},
		{"viewer", RoleAdmin, false},
	}
	for _, tt := range tests {
		a := Admin{Role: tt.role}
		if got := a.HasRole(tt.want); got != tt.ok {
			t.Errorf("Admin{Role:%q}.HasRole(%q) = %v, want %v", tt.role, tt.want, got, tt.ok)
		}
	}
}

func TestSessionExpiry(t *testing.T) {
	issued := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	s := Session{IssuedAt: issued.UnixMilli()}
	ttl := time.Hour

	if s.Expired(issued.Add(59*time.Minute), ttl) {
		t.Error("session expired before the TTL")
	}
	if !s.Expired(issued.Add(time.Hour), ttl) {
		t.Error("session still live at exactly the TTL")
	}
	if !s.Expired(issued.Add(2*time.Hour), ttl) {
		t.Error("session still live past the TTL")
	}

	// A clock moving backward must not extend the session.
	if got := s.Age(issued.Add(-time.Minute)); got >= 0 {
		t.Errorf("Age with earlier clock = %v, want negative", got)
	}
}

func TestSessionJSONShape(t *testing.T) {
	s := Session{Admin: Admin{ID: 7}, IssuedAt: 1700000000000}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["timestamp"]; !ok {
		t.Errorf("session JSON missing timestamp key: %s", data)
	}
}

func TestStringListRoundTrip(t *testing.T) {
	l := StringList{"a.jpg", "b.jpg"}
	v, err := l.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var got StringList
	if err := got.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 2 || got[0] != "a.jpg" || got[1] != "b.jpg" {
		t.Errorf("round trip = %v", got)
	}
}

func TestStringListEmptyAndNull(t *testing.T) {
	var empty StringList
	v, err := empty.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != "[]" {
		t.Errorf("nil list stored as %v, want \"[]\"", v)
	}

	var got StringList
	if err := got.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("NULL scanned as %v, want empty list", got)
	}
}

func TestJSONObjectNilIsNull(t *testing.T) {
	var o JSONObject
	v, err := o.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != nil {
		t.Errorf("nil object stored as %v, want SQL NULL", v)
	}
}

func TestDestinationNormalize(t *testing.T) {
	d := Destination{
		DifficultyLevel: "impossible",
		Latitude:        10.3,
		Longitude:       123.9,
		Rating:          -1,
		ReviewCount:     -5,
		EntranceFee:     -100,
	}
	d.Normalize()

	if d.DifficultyLevel != DifficultyEasy {
		t.Errorf("difficulty = %q, want %q", d.DifficultyLevel, DifficultyEasy)
	}
	if d.Coordinates.Lat != 10.3 || d.Coordinates.Lng != 123.9 {
		t.Errorf("coordinates = %+v", d.Coordinates)
	}
	if d.Rating != 0 || d.ReviewCount != 0 || d.EntranceFee != 0 {
		t.Errorf("negative counters not clamped: rating=%v reviews=%d fee=%v", d.Rating, d.ReviewCount, d.EntranceFee)
	}
	if d.Images == nil || d.Amenities == nil || d.AccessibilityFeatures == nil {
		t.Error("nil lists not defaulted to empty")
	}
}

func TestDestinationNormalizeKeepsValidDifficulty(t *testing.T) {
	d := Destination{DifficultyLevel: DifficultyChallenging}
	d.Normalize()
	if d.DifficultyLevel != DifficultyChallenging {
		t.Errorf("difficulty = %q, want %q", d.DifficultyLevel, DifficultyChallenging)
	}
}
