package telegram

import (
	"testing"
	"time"
)

func TestMonthWindow(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		from time.Time
		to   time.Time
	}{
		{
			"mid month",
			time.Date(2024, time.March, 15, 18, 30, 0, 0, time.UTC),
			time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"year rollover",
			time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC),
			time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"non UTC clock",
			time.Date(2024, time.March, 1, 0, 30, 0, 0, time.FixedZone("east", 3*3600)),
			time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			from, to := monthWindow(tc.now)
			if from != tc.from.Unix() {
				t.Errorf("monthWindow() from = %d, want %d", from, tc.from.Unix())
			}
			if to != tc.to.Unix() {
				t.Errorf("monthWindow() to = %d, want %d", to, tc.to.Unix())
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	day, err := parseDay(" 2024-03-01 ")
	if err != nil {
		t.Fatalf("parseDay() error = %v", err)
	}
	want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Errorf("parseDay() = %v, want %v", day, want)
	}

	for _, bad := range []string{"01/03/2024", "2024-3-1", "yesterday", ""} {
		if _, err := parseDay(bad); err == nil {
			t.Errorf("parseDay(%q) expected an error", bad)
		}
	}
}
