package model

// RawWeather is one weather station sample from the provider.
type RawWeather struct {
	Time          string  `json:"time"`
	AirTemp       float64 `json:"airTemp"`
	Humidity      float64 `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	Rainfall      bool    `json:"rainfall"`
	TrackTemp     float64 `json:"trackTemp"`
	WindDirection float64 `json:"windDirection"`
	WindSpeed     float64 `json:"windSpeed"`
}

// Weather is a session-time indexed weather sample. Weather stations sample
// on their own clock, so laps are matched by nearest session time.
type Weather struct {
	SessionTime   float64
	AirTemp       float64
	Humidity      float64
	Pressure      float64
	Rainfall      int
	TrackTemp     float64
	WindDirection float64
	WindSpeed     float64
}
