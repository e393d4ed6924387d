package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	d := NewDate(2030, time.May, 10)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, `"2030-05-10"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	require.True(t, back.Equal(d.Time))

	var bad Date
	require.Error(t, json.Unmarshal([]byte(`"10/05/2030"`), &bad))
}

func TestDate_Nights(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  Date
		checkOut Date
		want     int
	}{
		{"two nights", NewDate(2030, time.May, 10), NewDate(2030, time.May, 12), 2},
		{"same day", NewDate(2030, time.May, 10), NewDate(2030, time.May, 10), 0},
		{"inverted", NewDate(2030, time.May, 12), NewDate(2030, time.May, 10), -2},
		{"across month", NewDate(2030, time.May, 30), NewDate(2030, time.June, 2), 3},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.checkIn.Nights(tt.checkOut))
		})
	}
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2030, time.May, 10, 15, 4, 5, 0, time.Local)))
	require.True(t, d.Equal(NewDate(2030, time.May, 10).Time))

	var s Date
	require.NoError(t, s.Scan("2030-05-10"))
	require.True(t, s.Equal(NewDate(2030, time.May, 10).Time))

	var bad Date
	require.Error(t, bad.Scan(42))
}
