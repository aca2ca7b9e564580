package refdata

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lookup resolves provider vocabulary (driver abbreviations, team and
// compound names, track status codes, locations) into the stable numeric
// identifiers used by the feature table. A miss is never an error: the
// tables are maintained independently and may lag new entrants.
type Lookup interface {
	DriverID(abbr string) (int, bool)
	TeamID(name string) (int, bool)
	CompoundID(name string) (int, bool)
	TrackStatusID(code int) (int, bool)
	TrackID(location string) (int, bool)
	DriverPoints(year, driverID int) (float64, bool)
	TeamPoints(year, teamID int) (float64, bool)
	DriverBio(abbr string) (Bio, bool)
}

// Bio carries the static driver biography features.
type Bio struct {
	Abbreviation string  `yaml:"abbreviation" json:"abbreviation"`
	Age          float64 `yaml:"age" json:"age"`
	GPsEntered   float64 `yaml:"gpsEntered" json:"gpsEntered"`
	Points       float64 `yaml:"points" json:"points"`
}

// Tables is the file backed Lookup implementation.
type Tables struct {
	Drivers      map[string]int          `yaml:"drivers"`
	Teams        map[string]int          `yaml:"teams"`
	Compounds    map[string]int          `yaml:"compounds"`
	TrackStatus  map[int]int             `yaml:"trackStatus"`
	Tracks       map[string]int          `yaml:"tracks"`
	DriverPts    map[int]map[int]float64 `yaml:"driverPoints"`
	TeamPts      map[int]map[int]float64 `yaml:"teamPoints"`
	Bios         []Bio                   `yaml:"bios"`
	biosByAbbrev map[string]Bio
}

//go:embed tables.yml
var defaultTables []byte

// Default returns the embedded reference tables.
func Default() *Tables {
	t, err := parse(defaultTables)
	if err != nil {
		// embedded data is validated by tests
		panic(err)
	}
	return t
}

// Load reads reference tables from a YAML file, so mappings can be swapped
// or versioned independently of the pipeline.
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reference tables: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing reference tables: %w", err)
	}
	t.biosByAbbrev = make(map[string]Bio, len(t.Bios))
	for _, b := range t.Bios {
		t.biosByAbbrev[b.Abbreviation] = b
	}
	return &t, nil
}

func (t *Tables) DriverID(abbr string) (int, bool) {
	id, ok := t.Drivers[abbr]
	return id, ok
}

func (t *Tables) TeamID(name string) (int, bool) {
	id, ok := t.Teams[name]
	return id, ok
}

func (t *Tables) CompoundID(name string) (int, bool) {
	id, ok := t.Compounds[name]
	return id, ok
}

func (t *Tables) TrackStatusID(code int) (int, bool) {
	id, ok := t.TrackStatus[code]
	return id, ok
}

func (t *Tables) TrackID(location string) (int, bool) {
	id, ok := t.Tracks[location]
	return id, ok
}

func (t *Tables) DriverPoints(year, driverID int) (float64, bool) {
	byDriver, ok := t.DriverPts[year]
	if !ok {
		return 0, false
	}
	pts, ok := byDriver[driverID]
	return pts, ok
}

func (t *Tables) TeamPoints(year, teamID int) (float64, bool) {
	byTeam, ok := t.TeamPts[year]
	if !ok {
		return 0, false
	}
	pts, ok := byTeam[teamID]
	return pts, ok
}

func (t *Tables) DriverBio(abbr string) (Bio, bool) {
	b, ok := t.biosByAbbrev[abbr]
	return b, ok
}
