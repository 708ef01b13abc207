// ===============================
// internal/models/types.go - Shared column types for PostgreSQL arrays and JSONB
// ===============================

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ===============================
// STRING SLICE TYPE (for TEXT[] columns)
// ===============================

type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	return "{" + strings.Join(s, ",") + "}", nil
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		str := strings.Trim(string(v), "{}")
		if str == "" {
			*s = []string{}
			return nil
		}
		*s = strings.Split(str, ",")
	case string:
		str := strings.Trim(v, "{}")
		if str == "" {
			*s = []string{}
			return nil
		}
		*s = strings.Split(str, ",")
	default:
		return fmt.Errorf("unsupported type: %T", value)
	}
	return nil
}

// ===============================
// INT SLICE TYPE (for INTEGER[] columns, e.g. days of week)
// ===============================

type IntSlice []int

func (s IntSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	parts := make([]string, len(s))
	for i, n := range s {
		parts[i] = strconv.Itoa(n)
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

func (s *IntSlice) Scan(value interface{}) error {
	var str string
	switch v := value.(type) {
	case nil:
		*s = []int{}
		return nil
	case []byte:
		str = string(v)
	case string:
		str = v
	default:
		return fmt.Errorf("unsupported type: %T", value)
	}

	str = strings.Trim(str, "{}")
	if str == "" {
		*s = []int{}
		return nil
	}

	parts := strings.Split(str, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("invalid integer array element %q", p)
		}
		out = append(out, n)
	}
	*s = out
	return nil
}

func (s IntSlice) Contains(n int) bool {
	for _, v := range s {
		if v == n {
			return true
		}
	}
	return false
}

// ===============================
// METADATA MAP TYPE (for JSONB columns)
// ===============================

type MetadataMap map[string]interface{}

func (m MetadataMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *MetadataMap) Scan(value interface{}) error {
	if value == nil {
		*m = MetadataMap{}
		return nil
	}
	return json.Unmarshal(value.([]byte), m)
}
