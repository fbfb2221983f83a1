package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
)

const systemGenerate = `You are a travel safety research analyst for IsItSafeToVisit.com.
You write complete, accurate and actionable safety assessments for cities worldwide.

Rules:
1. Stay factual and evidence-based. Cite concrete data points where you can.
2. Score every category from 0 to 100, where 100 is safest.
3. Give a balanced view: name the real risks and the protective factors.
4. Include practical advice a traveler can act on.
5. Do not play down real dangers and do not exaggerate them.
6. Consider solo, female, LGBTQ+ and family travelers.

Respond with ONLY a valid JSON object matching the city schema. No markdown and no commentary.`

const systemRefresh = `You are a travel safety data analyst updating an existing city safety profile.
You receive the current data and check it against the latest information.

Rules:
1. Search for the latest travel advisories, crime data and safety events.
2. Change a score only when there is evidence for the change.
3. Record what changed and why in the revision notes.
4. Flag breaking safety events.
5. Put anything from the last 90 days in "recent_incidents".

Respond with ONLY a valid JSON object matching the city schema. No markdown and no commentary.`

const systemAlerts = `You are a breaking-news safety monitor for IsItSafeToVisit.com.
Search for recent events that affect traveler safety in any of the listed cities.

Look for travel advisory changes (State Department, FCDO), political unrest, coups and protests,
natural disasters, terrorism, disease outbreaks and major crime waves.

Respond with a JSON array of alerts:
[{"city_id": "...", "alert_type": "...", "severity": "critical|high|medium|low", "summary": "...", "action": "update_score|add_incident|emergency_content"}]

If there are no alerts, respond with: []`

func generatePrompt(name, country, cityID string, now time.Time) string {
	return fmt.Sprintf(`Research and generate a complete safety profile for %[1]s, %[2]s.

Search for:
1. The latest US State Department travel advisory for %[2]s
2. Crime statistics and safety data for %[1]s
3. Health risks and healthcare quality in %[1]s
4. Political stability and civil unrest risk in %[2]s
5. Natural disaster risks for %[1]s
6. Common tourist scams in %[1]s
7. LGBTQ+ safety and legal status in %[2]s
8. Women's safety and solo female travel reports for %[1]s
9. Nightlife safety in %[1]s
10. Emergency contact numbers for %[1]s

Generate the full city JSON with city_id: %[3]q
Include these score categories, each with a numeric "score": %[4]s.
Include sub-scores, content sections and metadata.
Set last_updated to %[5]s.
Set auto_generated: true, human_reviewed: false`,
		name, country, cityID,
		strings.Join(domain.DefaultScoring().Categories(), ", "),
		domain.FormatTimestamp(now),
	)
}

func refreshPrompt(rec domain.CityRecord, now time.Time) (string, error) {
	current, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode city %s for refresh: %w", rec.CityID, err)
	}

	since := rec.LastUpdated
	if since == "" {
		since = "unknown"
	}

	return fmt.Sprintf(`Here is the current safety data for %[1]s, %[2]s:

%[3]s

Search for any updates since %[4]s:
1. Has the travel advisory for %[2]s changed?
2. Any recent crime spikes or improvements in %[1]s?
3. Any political events, protests or instability in %[2]s?
4. Any disease outbreaks or health alerts for %[1]s?
5. Any natural disasters or extreme weather events?
6. Any new scam reports for %[1]s?
7. Any changes to LGBTQ+ laws or safety in %[2]s?

Update the JSON with any changes. Set last_updated to %[5]s.
Increment revision_count. Add any recent incidents to the recent_incidents array.`,
		rec.Name, rec.Country, current, since, domain.FormatTimestamp(now),
	), nil
}

func alertsPrompt(cities []domain.CityRecord) string {
	names := make([]string, len(cities))
	for i, c := range cities {
		names[i] = fmt.Sprintf("%s (%s) [%s]", c.Name, c.Country, c.CityID)
	}

	return fmt.Sprintf(`Check for breaking safety events in the last 48 hours
that would affect travelers in these cities:

%s

Use the bracketed id as city_id in each alert.

Search for:
1. New or changed travel advisories
2. Political unrest or protests
3. Natural disasters
4. Terrorism or major crime events
5. Disease outbreaks
6. Airport closures or transport disruptions`, strings.Join(names, ", "))
}
