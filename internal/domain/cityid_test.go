package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCityID(t *testing.T) {
	assert.Equal(t, "ho-chi-minh-city-vietnam", CityID("Ho Chi Minh City", "Vietnam"))
	assert.Equal(t, "new-york-city-united-states", CityID("New York City", "United States"))
	assert.Equal(t, "tokyo-japan", CityID(" Tokyo ", "Japan"))
}

func TestParseCityInput(t *testing.T) {
	name, country, err := ParseCityInput("  Tokyo ,  Japan ")
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", name)
	assert.Equal(t, "Japan", country)

	for _, bad := range []string{"Tokyo", "Tokyo, Japan, Asia", ", Japan", "Tokyo, ", ""} {
		_, _, err := ParseCityInput(bad)
		assert.ErrorIs(t, err, ErrInvalidCityInput, "%q", bad)
	}
}

func TestSeedQueue(t *testing.T) {
	q := SeedQueue()
	require.NotEmpty(t, q)

	seen := map[string]bool{}
	for _, e := range q {
		assert.NotEmpty(t, e.Name)
		assert.NotEmpty(t, e.Country)
		assert.NotEmpty(t, e.Region)
		id := CityID(e.Name, e.Country)
		assert.False(t, seen[id], "duplicate seed city %s", id)
		seen[id] = true
	}

	q[0].Name = "changed"
	assert.NotEqual(t, "changed", SeedCities[0].Name)
}
