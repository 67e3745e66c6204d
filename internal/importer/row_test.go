package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowValue(t *testing.T) {
	row := Row{"title": "  Beach House  ", "name": "ignored"}

	assert.Equal(t, "Beach House", row.Value(titleAliases, ""))
	assert.Equal(t, "fallback", row.Value([]string{"missing"}, "fallback"))

	// Blank values fall through to the next alias.
	row = Row{"title": "   ", "property_title": "Second Choice"}
	assert.Equal(t, "Second Choice", row.Value(titleAliases, ""))
}

func TestRowInt(t *testing.T) {
	assert.Equal(t, 3, Row{"bedrooms": "3"}.Int(bedroomsAliases, 1))
	assert.Equal(t, 3, Row{"bedrooms": "3.9"}.Int(bedroomsAliases, 1), "floats truncate")
	assert.Equal(t, 1, Row{"bedrooms": "lots"}.Int(bedroomsAliases, 1), "garbage falls back")
	assert.Equal(t, 1, Row{}.Int(bedroomsAliases, 1))
}

func TestRowOptionalInt(t *testing.T) {
	got := Row{"id": "42"}.OptionalInt(idAliases)
	if assert.NotNil(t, got) {
		assert.Equal(t, 42, *got)
	}

	assert.Nil(t, Row{}.OptionalInt(idAliases))
	assert.Nil(t, Row{"id": "abc"}.OptionalInt(idAliases))
	assert.Nil(t, Row{"id": "  "}.OptionalInt(idAliases))
}

func TestRowDecimalString(t *testing.T) {
	assert.Equal(t, "120.00", Row{"price": "120"}.DecimalString(priceAliases, "0.00"))
	assert.Equal(t, "99.50", Row{"price_per_night": "99.5"}.DecimalString(priceAliases, "0.00"))
	assert.Equal(t, "20.00", Row{"price": "19.999"}.DecimalString(priceAliases, "0.00"))
	// Float formatting, not decimal rounding: 2.675 sits just below the
	// binary midpoint, so it lands a cent low. Intentional, see DecimalString.
	assert.Equal(t, "2.67", Row{"price": "2.675"}.DecimalString(priceAliases, "0.00"))
	assert.Equal(t, "0.00", Row{"price": "cheap"}.DecimalString(priceAliases, "0.00"))
	assert.Equal(t, "0.00", Row{}.DecimalString(priceAliases, "0.00"))
}

func TestRowBool(t *testing.T) {
	assert.False(t, Row{"is_active": "false"}.Bool(isActiveAliases, "true"))
	assert.False(t, Row{"is_active": "FALSE"}.Bool(isActiveAliases, "true"))
	assert.False(t, Row{"is_active": "0"}.Bool(isActiveAliases, "true"))
	assert.False(t, Row{"is_active": "No"}.Bool(isActiveAliases, "true"))

	assert.True(t, Row{"is_active": "true"}.Bool(isActiveAliases, "true"))
	assert.True(t, Row{"is_active": "yes"}.Bool(isActiveAliases, "true"))
	assert.True(t, Row{"is_active": "anything"}.Bool(isActiveAliases, "true"))
	assert.True(t, Row{}.Bool(isActiveAliases, "true"), "absence defaults to active")
}
