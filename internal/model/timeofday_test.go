package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 9*60 + 30},
		{in: "23:59", want: 23*60 + 59},
		{in: "14:00:00", want: 14 * 60}, // MySQL TIME rendering
		{in: " 08:15 ", want: 8*60 + 15},
		{in: "24:00", want: MinutesPerDay}, // end-at-midnight sentinel
		{in: "24:01", wantErr: true},
		{in: "25:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "-1:00", wantErr: true},
		{in: "930", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "00:00", TimeOfDay(0).String())
	assert.Equal(t, "09:05", TimeOfDay(9*60+5).String())
	assert.Equal(t, "23:59", TimeOfDay(23*60+59).String())
}

func TestTimeOfDayJSON(t *testing.T) {
	b, err := json.Marshal(TimeOfDay(10*60 + 30))
	require.NoError(t, err)
	assert.Equal(t, `"10:30"`, string(b))

	var v TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"16:45"`), &v))
	assert.Equal(t, TimeOfDay(16*60+45), v)

	assert.Error(t, json.Unmarshal([]byte(`"25:00"`), &v))
}

func TestTimeOfDayMidnightEndRoundTrip(t *testing.T) {
	end := TimeOfDay(MinutesPerDay)
	b, err := json.Marshal(end)
	require.NoError(t, err)
	assert.Equal(t, `"24:00"`, string(b))

	var v TimeOfDay
	require.NoError(t, json.Unmarshal(b, &v))
	assert.Equal(t, end, v)
}

func TestTimeOfDayAddPastMidnight(t *testing.T) {
	end := TimeOfDay(23 * 60).Add(90)
	assert.False(t, end.Valid(), "end past midnight must be reported invalid")
}
