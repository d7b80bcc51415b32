package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04:05", value)
	require.NoError(t, err)
	return parsed
}

func TestWillExpireAt(t *testing.T) {
	s := New(fixedClock{now: ts(t, "2022-01-01 12:00:00")}, DefaultHours)

	tests := []struct {
		name      string
		due       string
		createdAt string
		want      string
	}{
		{
			name:      "within 90 hours expires at due",
			due:       "2022-01-19 13:56:01",
			createdAt: "2022-01-17 13:56:01",
			want:      "2022-01-19 13:56:01",
		},
		{
			name:      "created after due still expires at due",
			due:       "2022-01-19 13:59:48",
			createdAt: "2022-01-20 13:59:48",
			want:      "2022-01-19 13:59:48",
		},
		{
			name:      "21 minutes ahead expires at due",
			due:       "2022-01-19 14:00:57",
			createdAt: "2022-01-19 13:39:57",
			want:      "2022-01-19 14:00:57",
		},
		{
			name:      "just over 90 hours expires 90 minutes after creation",
			due:       "2022-01-21 10:00:00",
			createdAt: "2022-01-17 13:00:00",
			want:      "2022-01-17 14:30:00",
		},
		{
			name:      "within 30 days expires 90 minutes after creation",
			due:       "2022-02-10 09:00:00",
			createdAt: "2022-01-17 09:00:00",
			want:      "2022-01-17 10:30:00",
		},
		{
			name:      "two months ahead expires 48 hours before due",
			due:       "2022-01-19 13:50:55",
			createdAt: "2021-11-19 13:50:55",
			want:      "2022-01-17 13:50:55",
		},
		{
			name:      "over 90 days expires 48 hours before due",
			due:       "2022-07-19 13:50:55",
			createdAt: "2022-01-17 13:50:55",
			want:      "2022-07-17 13:50:55",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.WillExpireAt(ts(t, tt.due), ts(t, tt.createdAt))
			assert.Equal(t, ts(t, tt.want), got)
		})
	}
}

func TestWillExpireAtDegenerateInputs(t *testing.T) {
	now := ts(t, "2022-01-01 12:00:00")
	s := New(fixedClock{now: now}, DefaultHours)

	// Empty inputs must still produce a usable timestamp.
	got := s.WillExpireAt(time.Time{}, time.Time{})
	assert.Equal(t, now.Add(90*time.Minute), got)

	got = s.WillExpireAt(ts(t, "2022-01-05 12:00:00"), time.Time{})
	assert.Equal(t, now.Add(90*time.Minute), got)
	assert.False(t, got.IsZero())
}

func TestIsNightTime(t *testing.T) {
	s := New(nil, Hours{NightStart: 22, NightEnd: 6, BusinessStart: 9})

	tests := []struct {
		hour  int
		night bool
	}{
		{hour: 21, night: false},
		{hour: 22, night: true},
		{hour: 23, night: true},
		{hour: 0, night: true},
		{hour: 5, night: true},
		{hour: 6, night: false},
		{hour: 12, night: false},
	}

	for _, tt := range tests {
		at := time.Date(2022, 1, 17, tt.hour, 30, 0, 0, time.UTC)
		assert.Equal(t, tt.night, s.IsNightTime(at), "hour %d", tt.hour)
	}
}

func TestNextBusinessTime(t *testing.T) {
	s := New(nil, Hours{NightStart: 22, NightEnd: 6, BusinessStart: 9})

	// Before business start: same day.
	at := time.Date(2022, 1, 17, 2, 15, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2022, 1, 17, 9, 0, 0, 0, time.UTC), s.NextBusinessTime(at))

	// After business start: next day.
	at = time.Date(2022, 1, 17, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2022, 1, 18, 9, 0, 0, 0, time.UTC), s.NextBusinessTime(at))

	// Exactly at business start: next day.
	at = time.Date(2022, 1, 17, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2022, 1, 18, 9, 0, 0, 0, time.UTC), s.NextBusinessTime(at))
}
