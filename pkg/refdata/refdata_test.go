package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables(t *testing.T) {
	tables := Default()

	id, ok := tables.DriverID("VER")
	require.True(t, ok)
	assert.Equal(t, 1, id)

	id, ok = tables.TeamID("Red Bull Racing")
	require.True(t, ok)
	assert.Equal(t, 1, id)

	id, ok = tables.CompoundID("MEDIUM")
	require.True(t, ok)
	assert.Equal(t, 2, id)

	id, ok = tables.TrackStatusID(4)
	require.True(t, ok)
	assert.Equal(t, 3, id)

	id, ok = tables.TrackID("Monza")
	require.True(t, ok)
	assert.Equal(t, 16, id)
}

func TestLookupMissIsNotAnError(t *testing.T) {
	tables := Default()

	_, ok := tables.DriverID("XXX")
	assert.False(t, ok)

	_, ok = tables.CompoundID("QUALIFYING")
	assert.False(t, ok)

	_, ok = tables.DriverPoints(1989, 1)
	assert.False(t, ok)

	_, ok = tables.DriverBio("XXX")
	assert.False(t, ok)
}

func TestPointsLookups(t *testing.T) {
	tables := Default()

	pts, ok := tables.DriverPoints(2023, 1)
	require.True(t, ok)
	assert.Equal(t, 575.0, pts)

	pts, ok = tables.TeamPoints(2023, 4)
	require.True(t, ok)
	assert.Equal(t, 302.0, pts)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yml")
	payload := `
drivers:
  ABC: 99
bios:
  - abbreviation: ABC
    age: 20
    gpsEntered: 2
    points: 10
`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	tables, err := Load(path)
	require.NoError(t, err)

	id, ok := tables.DriverID("ABC")
	require.True(t, ok)
	assert.Equal(t, 99, id)

	bio, ok := tables.DriverBio("ABC")
	require.True(t, ok)
	assert.Equal(t, 10.0, bio.Points)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}
