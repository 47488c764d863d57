package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// UUIDList stores a set of uuids as a JSON array so the column round-trips
// identically on postgres and sqlite.
type UUIDList []uuid.UUID

func (l *UUIDList) Scan(src any) error {
	if src == nil {
		*l = UUIDList{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("UUIDList: unsupported Scan type %T", src)
	}

	if len(raw) == 0 {
		*l = UUIDList{}
		return nil
	}

	var out []uuid.UUID
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("UUIDList: decode: %w", err)
	}
	*l = UUIDList(out)
	return nil
}

func (l UUIDList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal([]uuid.UUID(l))
	if err != nil {
		return nil, fmt.Errorf("UUIDList: encode: %w", err)
	}
	return string(raw), nil
}

func (l UUIDList) Contains(id uuid.UUID) bool {
	for _, candidate := range l {
		if candidate == id {
			return true
		}
	}
	return false
}
