// ===============================
// internal/models/types.go - Column types shared by catalog models
// ===============================

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// StringSlice maps a PostgreSQL TEXT[] column. Reference lists keep their
// insertion order.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(s).Value()
}

func (s *StringSlice) Scan(value interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(value); err != nil {
		return fmt.Errorf("scan string slice: %w", err)
	}
	if arr == nil {
		*s = StringSlice{}
		return nil
	}
	*s = StringSlice(arr)
	return nil
}

// Contains reports whether id is present.
func (s StringSlice) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns a copy of s with every occurrence of id removed.
func (s StringSlice) Without(id string) StringSlice {
	out := make(StringSlice, 0, len(s))
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Subtitle is one subtitle track attached to an episode.
type Subtitle struct {
	Language string `json:"language" validate:"required"`
	URL      string `json:"url" validate:"required,url"`
}

// Subtitles is stored as JSONB.
type Subtitles []Subtitle

func (s Subtitles) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

func (s *Subtitles) Scan(value interface{}) error {
	if value == nil {
		*s = Subtitles{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Subtitles", value)
	}

	return json.Unmarshal(raw, s)
}
