package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Tags is a set of labels stored as a comma separated column
type Tags []string

// Value implements driver.Valuer
func (t Tags) Value() (driver.Value, error) {
	return strings.Join(t, ","), nil
}

// Scan implements sql.Scanner
func (t *Tags) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported tags type %T", src)
	}
	*t = ParseTags(raw)
	return nil
}

// ParseTags splits a comma separated list, dropping blanks and duplicates
func ParseTags(raw string) Tags {
	if raw == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out Tags
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
