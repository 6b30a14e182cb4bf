package ntime

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// NTime represents a nullable time.Time.
// It can be used as a scan destination and can be marshalled to JSON.
type NTime struct {
	time    time.Time
	isValid bool // false when Time is null, possibly redundant
}

// MarshalJSON implements the Marshaller interface and operates on values rather than pointers, given NTime's heft.
func (nt NTime) MarshalJSON() ([]byte, error) {
	// for some obscure reason the quotes are necessary
	if nt.isValid {
		return []byte(fmt.Sprintf("\"%s\"", nt.time.UTC().Format(time.RFC3339))), nil
	}
	return []byte("null"), nil
}

// Scan implements the Scanner interface. Depending on the column's declared
// type the driver yields either a parsed time.Time or the stored RFC3339 string.
func (nt *NTime) Scan(value any) error {
	switch v := value.(type) {
	case time.Time:
		nt.time, nt.isValid = v, true
	case string:
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return err
		}
		nt.time, nt.isValid = parsed, true
	default:
		nt.time, nt.isValid = time.Time{}, false
	}
	return nil
}

// Value implements the driver Valuer interface.
func (nt NTime) Value() (driver.Value, error) {
	if nt.isValid {
		return driver.Value(nt.time.UTC().Format(time.RFC3339)), nil
	}
	return nil, nil
}

func Now() NTime {
	return NTime{time: time.Now().UTC(), isValid: true}
}
