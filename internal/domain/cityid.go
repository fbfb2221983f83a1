package domain

import (
	"errors"
	"strings"
)

// ErrInvalidCityInput is returned for a city argument that is not "Name, Country".
var ErrInvalidCityInput = errors.New(`city must be in format "City, Country"`)

// CityID derives the stable record key from a display name and country:
// lowercased, spaces replaced by hyphens, joined with a hyphen.
//
//	CityID("Ho Chi Minh City", "Vietnam") == "ho-chi-minh-city-vietnam"
func CityID(name, country string) string {
	return slug(name) + "-" + slug(country)
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

// ParseCityInput splits "Name, Country" into its parts. Exactly two
// non-empty comma-separated parts are required.
func ParseCityInput(input string) (name, country string, err error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return "", "", ErrInvalidCityInput
	}
	name = strings.TrimSpace(parts[0])
	country = strings.TrimSpace(parts[1])
	if name == "" || country == "" {
		return "", "", ErrInvalidCityInput
	}
	return name, country, nil
}
