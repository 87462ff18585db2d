package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap stores free-form message metadata (attached file ids, classified
// intent) as a JSON column.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata failed: %w", err)
	}
	return string(b), nil
}

func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata column type %T", src)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	if err := json.Unmarshal(raw, m); err != nil {
		return fmt.Errorf("unmarshal metadata failed: %w", err)
	}
	return nil
}
