package domain

// SeedCities is the initial set of cities queued for generation, grouped by
// world area.
var SeedCities = []QueueEntry{
	// Asia
	{Name: "Tokyo", Country: "Japan", Region: "East Asia"},
	{Name: "Bangkok", Country: "Thailand", Region: "Southeast Asia"},
	{Name: "Singapore", Country: "Singapore", Region: "Southeast Asia"},
	{Name: "Seoul", Country: "South Korea", Region: "East Asia"},
	{Name: "Hong Kong", Country: "China", Region: "East Asia"},
	{Name: "Taipei", Country: "Taiwan", Region: "East Asia"},
	{Name: "Bali", Country: "Indonesia", Region: "Southeast Asia"},
	{Name: "Hanoi", Country: "Vietnam", Region: "Southeast Asia"},
	{Name: "Ho Chi Minh City", Country: "Vietnam", Region: "Southeast Asia"},
	{Name: "Kuala Lumpur", Country: "Malaysia", Region: "Southeast Asia"},
	{Name: "Manila", Country: "Philippines", Region: "Southeast Asia"},
	{Name: "Phnom Penh", Country: "Cambodia", Region: "Southeast Asia"},
	{Name: "Mumbai", Country: "India", Region: "South Asia"},
	{Name: "New Delhi", Country: "India", Region: "South Asia"},
	{Name: "Kathmandu", Country: "Nepal", Region: "South Asia"},
	{Name: "Colombo", Country: "Sri Lanka", Region: "South Asia"},

	// Europe
	{Name: "London", Country: "United Kingdom", Region: "Western Europe"},
	{Name: "Paris", Country: "France", Region: "Western Europe"},
	{Name: "Barcelona", Country: "Spain", Region: "Southern Europe"},
	{Name: "Madrid", Country: "Spain", Region: "Southern Europe"},
	{Name: "Rome", Country: "Italy", Region: "Southern Europe"},
	{Name: "Amsterdam", Country: "Netherlands", Region: "Western Europe"},
	{Name: "Berlin", Country: "Germany", Region: "Western Europe"},
	{Name: "Munich", Country: "Germany", Region: "Western Europe"},
	{Name: "Prague", Country: "Czech Republic", Region: "Central Europe"},
	{Name: "Vienna", Country: "Austria", Region: "Central Europe"},
	{Name: "Budapest", Country: "Hungary", Region: "Central Europe"},
	{Name: "Lisbon", Country: "Portugal", Region: "Southern Europe"},
	{Name: "Athens", Country: "Greece", Region: "Southern Europe"},
	{Name: "Istanbul", Country: "Turkey", Region: "Eurasia"},
	{Name: "Dublin", Country: "Ireland", Region: "Western Europe"},
	{Name: "Edinburgh", Country: "United Kingdom", Region: "Western Europe"},
	{Name: "Copenhagen", Country: "Denmark", Region: "Northern Europe"},
	{Name: "Stockholm", Country: "Sweden", Region: "Northern Europe"},
	{Name: "Oslo", Country: "Norway", Region: "Northern Europe"},
	{Name: "Helsinki", Country: "Finland", Region: "Northern Europe"},
	{Name: "Zurich", Country: "Switzerland", Region: "Western Europe"},
	{Name: "Brussels", Country: "Belgium", Region: "Western Europe"},
	{Name: "Krakow", Country: "Poland", Region: "Central Europe"},
	{Name: "Warsaw", Country: "Poland", Region: "Central Europe"},
	{Name: "Bucharest", Country: "Romania", Region: "Eastern Europe"},
	{Name: "Sofia", Country: "Bulgaria", Region: "Eastern Europe"},
	{Name: "Tirana", Country: "Albania", Region: "Southern Europe"},
	{Name: "Tbilisi", Country: "Georgia", Region: "Caucasus"},

	// Americas
	{Name: "New York City", Country: "United States", Region: "North America"},
	{Name: "Los Angeles", Country: "United States", Region: "North America"},
	{Name: "Miami", Country: "United States", Region: "North America"},
	{Name: "San Francisco", Country: "United States", Region: "North America"},
	{Name: "Chicago", Country: "United States", Region: "North America"},
	{Name: "Las Vegas", Country: "United States", Region: "North America"},
	{Name: "Honolulu", Country: "United States", Region: "North America"},
	{Name: "Toronto", Country: "Canada", Region: "North America"},
	{Name: "Vancouver", Country: "Canada", Region: "North America"},
	{Name: "Mexico City", Country: "Mexico", Region: "Central America"},
	{Name: "Cancun", Country: "Mexico", Region: "Central America"},
	{Name: "Playa del Carmen", Country: "Mexico", Region: "Central America"},
	{Name: "San Jose", Country: "Costa Rica", Region: "Central America"},
	{Name: "Panama City", Country: "Panama", Region: "Central America"},
	{Name: "Bogota", Country: "Colombia", Region: "South America"},
	{Name: "Medellin", Country: "Colombia", Region: "South America"},
	{Name: "Cartagena", Country: "Colombia", Region: "South America"},
	{Name: "Lima", Country: "Peru", Region: "South America"},
	{Name: "Cusco", Country: "Peru", Region: "South America"},
	{Name: "Buenos Aires", Country: "Argentina", Region: "South America"},
	{Name: "Santiago", Country: "Chile", Region: "South America"},
	{Name: "Rio de Janeiro", Country: "Brazil", Region: "South America"},
	{Name: "Sao Paulo", Country: "Brazil", Region: "South America"},

	// Middle East
	{Name: "Dubai", Country: "United Arab Emirates", Region: "Middle East"},
	{Name: "Abu Dhabi", Country: "United Arab Emirates", Region: "Middle East"},
	{Name: "Doha", Country: "Qatar", Region: "Middle East"},
	{Name: "Riyadh", Country: "Saudi Arabia", Region: "Middle East"},
	{Name: "Amman", Country: "Jordan", Region: "Middle East"},
	{Name: "Tel Aviv", Country: "Israel", Region: "Middle East"},
	{Name: "Muscat", Country: "Oman", Region: "Middle East"},

	// Africa
	{Name: "Cape Town", Country: "South Africa", Region: "Southern Africa"},
	{Name: "Johannesburg", Country: "South Africa", Region: "Southern Africa"},
	{Name: "Marrakech", Country: "Morocco", Region: "North Africa"},
	{Name: "Cairo", Country: "Egypt", Region: "North Africa"},
	{Name: "Nairobi", Country: "Kenya", Region: "East Africa"},
	{Name: "Dar es Salaam", Country: "Tanzania", Region: "East Africa"},
	{Name: "Accra", Country: "Ghana", Region: "West Africa"},
	{Name: "Lagos", Country: "Nigeria", Region: "West Africa"},
	{Name: "Addis Ababa", Country: "Ethiopia", Region: "East Africa"},
	{Name: "Kigali", Country: "Rwanda", Region: "East Africa"},

	// Oceania
	{Name: "Sydney", Country: "Australia", Region: "Oceania"},
	{Name: "Melbourne", Country: "Australia", Region: "Oceania"},
	{Name: "Auckland", Country: "New Zealand", Region: "Oceania"},
	{Name: "Queenstown", Country: "New Zealand", Region: "Oceania"},
	{Name: "Fiji", Country: "Fiji", Region: "Oceania"},

	// Caribbean
	{Name: "San Juan", Country: "Puerto Rico", Region: "Caribbean"},
	{Name: "Nassau", Country: "Bahamas", Region: "Caribbean"},
	{Name: "Kingston", Country: "Jamaica", Region: "Caribbean"},
	{Name: "Havana", Country: "Cuba", Region: "Caribbean"},
	{Name: "Punta Cana", Country: "Dominican Republic", Region: "Caribbean"},
}

// SeedQueue returns a copy of SeedCities safe to hand to a store.
func SeedQueue() []QueueEntry {
	return append([]QueueEntry(nil), SeedCities...)
}
