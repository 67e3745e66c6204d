package importer

import (
	"strconv"
	"strings"
)

// Row is one CSV record keyed by header column name. Column names are
// case-sensitive; lookups walk an ordered alias list and take the first
// column whose trimmed value is non-blank.
type Row map[string]string

// Value resolves the first non-blank value among the aliases, else fallback.
func (r Row) Value(aliases []string, fallback string) string {
	for _, key := range aliases {
		raw, ok := r[key]
		if !ok {
			continue
		}
		if value := strings.TrimSpace(raw); value != "" {
			return value
		}
	}
	return fallback
}

// Int resolves an integer field. Values are parsed as floats and truncated,
// so "3.9" imports as 3. Parse failures fall back silently.
func (r Row) Int(aliases []string, fallback int) int {
	value := r.Value(aliases, "")
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return int(f)
}

// OptionalInt resolves an integer field that may legitimately be absent.
// Absence and parse failures both yield nil rather than a default.
func (r Row) OptionalInt(aliases []string) *int {
	value := r.Value(aliases, "")
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}

// DecimalString resolves a price-like field to a fixed 2-decimal string.
// The value goes through float64, matching the upstream data pipeline: the
// text formatting rounds the nearest binary representation, so "19.999"
// becomes "20.00" and some inputs (e.g. "2.675") can land a cent off from
// exact decimal rounding.
func (r Row) DecimalString(aliases []string, fallback string) string {
	value := r.Value(aliases, "")
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Bool resolves the active flag: "false", "0" and "no" (any case) are false,
// everything else, including absence, is true.
func (r Row) Bool(aliases []string, fallback string) bool {
	value := strings.ToLower(r.Value(aliases, fallback))
	return value != "false" && value != "0" && value != "no"
}
