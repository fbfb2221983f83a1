package domain

import "context"

// Researcher produces model replies for the pipeline. Replies are raw text;
// parsing them is the caller's job.
type Researcher interface {
	// Generate asks for a complete profile of a city not yet in the store.
	Generate(ctx context.Context, name, country string) (string, error)

	// Refresh asks for an updated version of an existing record.
	Refresh(ctx context.Context, rec CityRecord) (string, error)

	// CheckAlerts asks for breaking safety events across the given cities.
	// The reply is expected to be a JSON array of alerts.
	CheckAlerts(ctx context.Context, cities []CityRecord) (string, error)
}
