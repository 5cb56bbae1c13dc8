package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a []string stored as a JSON array in a TEXT column. It is
// used for image URLs, amenities, and similar variable-length attributes.
type StringList []string

// Value implements driver.Valuer, serializing the list as JSON. An empty or
// nil list is stored as "[]" so columns never hold SQL NULL.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. NULL scans as an empty list.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("decode string list: %w", err)
	}
	*l = out
	return nil
}

// JSONObject is a map stored as a JSON object in a TEXT column. Audit
// entries use it for their old/new payload snapshots.
type JSONObject map[string]interface{}

// Value implements driver.Valuer. A nil map is stored as SQL NULL.
func (o JSONObject) Value() (driver.Value, error) {
	if o == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]interface{}(o))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. NULL scans as a nil map.
func (o *JSONObject) Scan(src interface{}) error {
	if src == nil {
		*o = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONObject", src)
	}
	if len(data) == 0 {
		*o = nil
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("decode json object: %w", err)
	}
	*o = out
	return nil
}

// Coordinates is an optional lat/lng pair. Records with no stored
// coordinates normalize to the {0, 0} default.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
