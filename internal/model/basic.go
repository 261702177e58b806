package model

import (
	"bytes"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const datetimeLayout = "2006-01-02T15:04:05.000Z"

// RawNumber is a numeric field exactly as the venue sent it. It decodes JSON
// strings, numbers and null; any other JSON value decodes to an empty RawNumber
// so one malformed field never fails the whole message.
type RawNumber string

func (n *RawNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0:
		*n = ""
	case b[0] == '"':
		s, err := strconv.Unquote(string(b))
		if err != nil {
			s = ""
		}
		*n = RawNumber(s)
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		*n = RawNumber(b)
	default:
		*n = ""
	}

	return nil
}

// Decimal parses the field as an exact decimal. The result is null when the
// field is absent or malformed.
func (n RawNumber) Decimal() decimal.NullDecimal {
	return ParseDecimal(string(n))
}

// Int parses the field as a base-10 integer.
func (n RawNumber) Int() (int64, bool) {
	if len(n) == 0 {
		return 0, false
	}

	v, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

// ParseDecimal never fails: unparsable input yields a null decimal.
func ParseDecimal(s string) decimal.NullDecimal {
	if len(s) == 0 {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// ISO8601 formats a millisecond timestamp, returning "" for a missing one.
func ISO8601(ms int64) string {
	if ms <= 0 {
		return ""
	}

	return time.UnixMilli(ms).UTC().Format(datetimeLayout)
}

func nullEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}

	return !a.Valid || a.Decimal.Equal(b.Decimal)
}

func appendNull(buf []byte, d decimal.NullDecimal) []byte {
	if !d.Valid {
		return append(buf, "null"...)
	}

	return append(buf, d.Decimal.String()...)
}
