package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of session dates
const DateLayout = "2006-01-02"

// Optional is a request field that distinguishes an absent key from an explicit null
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON is only invoked for keys present in the payload
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a date in the format YYYY-MM-DD", field)
	}
	return t, nil
}

// FormatDate renders a date in the wire format, or nil
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
