package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// StringList is a []string persisted as a jsonb array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (l *StringList) Scan(src any) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if raw == nil {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// JSONDocument holds an arbitrary jsonb value verbatim.
type JSONDocument json.RawMessage

func (d JSONDocument) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return []byte(d), nil
}

func (d *JSONDocument) Scan(src any) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return err
	}
	*d = append((*d)[:0], raw...)
	return nil
}

func (d JSONDocument) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return []byte(d), nil
}

func (d *JSONDocument) UnmarshalJSON(data []byte) error {
	*d = append((*d)[:0], data...)
	return nil
}

// IsContainer reports whether the document is a JSON object or array.
func (d JSONDocument) IsContainer() bool {
	for _, b := range d {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{', '[':
			return json.Valid(d)
		default:
			return false
		}
	}
	return false
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("domain: unsupported json source type")
	}
}
