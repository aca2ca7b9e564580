package model

// RawResult is one classification row as delivered by the provider,
// in the provider's default finishing order (leader first).
type RawResult struct {
	Abbreviation       string `json:"abbreviation"`
	TeamID             string `json:"teamId"`
	CountryCode        string `json:"countryCode"`
	ClassifiedPosition string `json:"classifiedPosition"`
	GridPosition       float64
	// Time is the day-qualified clock duration string, empty when the
	// driver has no recorded race time.
	Time   string  `json:"time"`
	Points float64 `json:"points"`
}

// Result is the canonical per-driver classification record.
type Result struct {
	// DriverAbbr stays the three letter abbreviation until the context
	// enricher maps it to the stable driver id.
	DriverAbbr string
	DriverID   int
	TeamID     string
	Country    string
	// FinalPosition stays textual until the final cleanup stage casts it;
	// non-race sessions have no castable value.
	FinalPosition string
	GridPosition  float64
	RaceTimeDiff  float64
	Points        float64
	Retired       int
	Location      string
	Year          int
	TrackID       int

	// context enrichment, attached by the enricher
	Age                  float64
	Experience           float64
	Achievements         float64
	AchievementsByTime   float64
	LastYearDriverPoints float64
	LastYearTeamPoints   float64
	IsDriverActive       int
	HasBio               bool
}
