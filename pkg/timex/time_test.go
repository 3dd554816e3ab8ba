package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnixAccessors(t *testing.T) {
	now := time.Now()
	tt := Time(now)

	assert.Equal(t, now.Unix(), tt.Unix())
	assert.Equal(t, now.UnixMilli(), tt.UnixMilli())
	assert.Equal(t, now.UnixMicro(), tt.UnixMicro())
	assert.Equal(t, now.UnixNano(), tt.UnixNano())
}

func TestFromUnixMilli(t *testing.T) {
	ms := int64(1700000000123)
	tt := FromUnixMilli(ms)
	assert.Equal(t, ms, tt.UnixMilli())
}

func TestJSONRoundTrip(t *testing.T) {
	src := Time(time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local))

	data, err := json.Marshal(src)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-14 09:26:53"`, string(data))

	var dst Time
	require.NoError(t, json.Unmarshal(data, &dst))
	assert.Equal(t, src.Unix(), dst.Unix())
}

func TestUnmarshalNull(t *testing.T) {
	var tt Time
	require.NoError(t, json.Unmarshal([]byte("null"), &tt))
	assert.True(t, tt.IsZero())
}
