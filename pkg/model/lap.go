package model

// RawLap is one lap row as delivered by the provider. Duration columns are
// day-qualified clock duration strings; empty strings mean "not recorded".
type RawLap struct {
	LapNumber    int     `json:"lapNumber"`
	Driver       string  `json:"driver"`
	LapTime      string  `json:"lapTime"`
	Compound     string  `json:"compound"`
	TyreLife     float64 `json:"tyreLife"`
	Stint        float64 `json:"stint"`
	PitInTime    string  `json:"pitInTime"`
	PitOutTime   string  `json:"pitOutTime"`
	FreshTyre    bool    `json:"freshTyre"`
	Team         string  `json:"team"`
	TrackStatus  string  `json:"trackStatus"`
	Position     *float64
	Sector1Time  string `json:"sector1Time"`
	Sector2Time  string `json:"sector2Time"`
	Sector3Time  string `json:"sector3Time"`
	SpeedI1      *float64
	SpeedI2      *float64
	SpeedFL      *float64
	SpeedST      *float64
	LapStartTime string `json:"lapStartTime"`
}

// Lap is the canonical per-lap record with normalized times and
// reference-mapped identifiers.
type Lap struct {
	LapNumber   int
	DriverID    int
	LapTime     float64
	CompoundID  int
	TyreLife    float64
	Stint       float64
	FreshTyre   int
	TeamID      int
	TrackStatus int
	Position    float64
	Sector1Time float64
	Sector2Time float64
	Sector3Time float64
	SpeedI1     float64
	SpeedI2     float64
	SpeedFL     float64
	SpeedST     float64
	SessionTime float64
	PitInTime   float64
	PitOutTime  float64
}
