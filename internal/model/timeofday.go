package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedTime is returned when a wall-clock string is not of the form HH:MM:SS.
var ErrMalformedTime = errors.New("malformed time of day")

// TimeOfDay is a wall-clock value without date or zone. Components are not
// range-checked, so "99:99:99" is a valid TimeOfDay.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay converts "HH:MM:SS" into a TimeOfDay. An empty string yields nil.
func ParseTimeOfDay(s string) (*TimeOfDay, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q has %d components", ErrMalformedTime, s, len(parts))
	}

	var out [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedTime, s, err)
		}
		out[i] = n
	}

	return &TimeOfDay{Hour: out[0], Minute: out[1], Second: out[2]}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Value stores the value in its textual form so the same column type works
// across sqlite and postgres.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *TimeOfDay) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		*t = TimeOfDay{Hour: v.Hour(), Minute: v.Minute(), Second: v.Second()}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}

	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	if parsed == nil {
		return fmt.Errorf("%w: empty value", ErrMalformedTime)
	}
	*t = *parsed
	return nil
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	return t.Scan(text)
}
