//nolint:lll // ok for tests
package timing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeconds(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{name: "race time", raw: "0 days 01:54:21.964000", want: 1*3600 + 54*60 + 21.964},
		{name: "gap", raw: "0 days 00:00:10.933000", want: 10.933},
		{name: "no fraction", raw: "0 days 00:01:00", want: 60},
		{name: "short fraction", raw: "0 days 00:00:00.5", want: 0.5},
		{name: "day carry", raw: "1 days 00:00:01", want: 86401},
		{name: "negative", raw: "-0 days 00:00:02", want: -2},
		{name: "malformed", raw: "01:54:21.964", wantErr: true},
		{name: "garbage", raw: "yesterday", wantErr: true},
		{name: "bad minutes", raw: "0 days 00:71:00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Seconds(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSecondsOr(t *testing.T) {
	got, err := SecondsOr("", 200)
	require.NoError(t, err)
	assert.Equal(t, 200.0, got)

	got, err = SecondsOr("0 days 00:00:02", 200)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	_, err = SecondsOr("nope", 0)
	assert.Error(t, err)
}

func TestSecondsOpt(t *testing.T) {
	got, err := SecondsOpt("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = SecondsOpt("0 days 00:30:00")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1800.0, *got)
}
