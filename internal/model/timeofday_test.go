package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay_RoundTrip(t *testing.T) {
	for _, s := range []string{"00:00:00", "00:00:05", "00:01:00", "12:34:56", "23:59:59"} {
		parsed, err := ParseTimeOfDay(s)
		require.NoError(t, err, s)
		require.NotNil(t, parsed)
		assert.Equal(t, s, parsed.String())
	}
}

func TestParseTimeOfDay_Empty(t *testing.T) {
	parsed, err := ParseTimeOfDay("")
	assert.NoError(t, err)
	assert.Nil(t, parsed)
}

func TestParseTimeOfDay_NoRangeCheck(t *testing.T) {
	parsed, err := ParseTimeOfDay("99:99:99")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 99, Minute: 99, Second: 99}, *parsed)
	assert.Equal(t, "99:99:99", parsed.String())
}

func TestParseTimeOfDay_Malformed(t *testing.T) {
	for _, s := range []string{"12:00", "1:2:3:4", "aa:bb:cc", "12-00-00"} {
		_, err := ParseTimeOfDay(s)
		assert.ErrorIs(t, err, ErrMalformedTime, s)
	}
}

func TestTimeOfDay_Scan(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.Scan([]byte("01:02:03")))
	assert.Equal(t, TimeOfDay{1, 2, 3}, tod)

	require.NoError(t, tod.Scan(time.Date(0, 1, 1, 4, 5, 6, 0, time.UTC)))
	assert.Equal(t, TimeOfDay{4, 5, 6}, tod)

	assert.Error(t, tod.Scan(42))
	assert.ErrorIs(t, tod.Scan(""), ErrMalformedTime)
}

func TestTimeOfDay_JSON(t *testing.T) {
	ts := Timestamp{Type: "intro", StartTime: &TimeOfDay{0, 0, 5}}
	raw, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"intro","start_time":"00:00:05","end_time":null}`, string(raw))

	var back Timestamp
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, ts, back)
}
