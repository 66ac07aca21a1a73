package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tfshrms/worktracker/internal/tracker/domain"
)

func TestNormalizeMonth(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jan2026", "Jan2026"},
		{"JAN2026", "Jan2026"},
		{"Jan2026", "Jan2026"},
		{"  feB2025 ", "Feb2025"},
		{"", ""},
		{"   ", ""},
		{"MARCH2025", "MarCH2025"},
		{"xy", "Xy"},
		{"foo", "Foo"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.NormalizeMonth(tt.in))
		})
	}
}

func TestParseMonth(t *testing.T) {
	first, ok := domain.ParseMonth("Feb2024")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), first)

	for _, bad := range []string{"", "Foo2024", "MarCH2025", "Jan26", "2024Jan"} {
		_, ok := domain.ParseMonth(bad)
		assert.False(t, ok, bad)
	}
}

func TestResolveMonth(t *testing.T) {
	now := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "Mar2026", domain.ResolveMonth("", now))
	assert.Equal(t, "Jan2026", domain.ResolveMonth("jan2026", now))
	assert.Equal(t, "Mar2026", domain.CurrentMonth(now))
}

func TestCivilDate_UsesLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	instant := time.Date(2026, time.January, 31, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC), domain.CivilDate(instant, time.UTC))
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), domain.CivilDate(instant, kolkata))
}

func TestMonthBounds(t *testing.T) {
	first, _ := domain.ParseMonth("Dec2025")
	start, end := domain.MonthBounds(first, time.UTC)

	assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}
