package model

// SessionType selects which kind of session is requested from the provider.
// Only races carry classified results the pipeline can use.
type SessionType string

const (
	SessionRace SessionType = "R"
)

// SessionMeta identifies one race event instance.
type SessionMeta struct {
	Year     int    `json:"year"`
	Round    int    `json:"round"`
	Location string `json:"location"`
	Country  string `json:"country"`
}

// MissingID marks a reference table miss. Reference tables are maintained
// independently and may lag new entrants, so a miss is data, not an error.
const MissingID = -1

// RetiredPosition is the canonical worst position. Grids rarely exceed
// 20-24 cars, so retired/DNF/withdrawn drivers are collapsed to it.
const RetiredPosition = 20

// RetiredGapSeconds is the race time gap assigned to drivers without a
// recorded race time. It must compare worse than any finisher's gap.
const RetiredGapSeconds = 200.0

// UnknownRacePosition marks laps where the running position was not
// classified (e.g. the driver had already retired).
const UnknownRacePosition = -1
