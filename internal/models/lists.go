package models

import (
	"database/sql/driver"
	"encoding/json"
	"log/slog"

	"github.com/evidenx/evidenx/internal/errors"
)

// StringList is stored as a JSON array in a TEXT column.
type StringList []string

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	return scanJSON(src, l)
}

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return valueJSON(l)
}

// Seconds is a list of offsets into a media file stored as a JSON array in a TEXT column.
type Seconds []float64

// Scan implements sql.Scanner.
func (s *Seconds) Scan(src any) error {
	return scanJSON(src, s)
}

// Value implements driver.Valuer.
func (s Seconds) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return valueJSON(s)
}

func scanJSON(src any, dst any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return errors.New("unsupported JSON column type", slog.Any("src", src))
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Wrap(err, "unmarshal JSON column")
	}
	return nil
}

func valueJSON(v any) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal JSON column")
	}
	return string(data), nil
}
