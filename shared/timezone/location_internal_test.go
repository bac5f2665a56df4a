package timezone

import (
	"testing"
	"time"
)

// A date string for the current day must never compare as past,
// whatever offset the application runs in. Locations behind UTC are
// the interesting case: parsing the string in UTC instead of the
// application location would put it before local midnight.
func TestParseTodayIsNotBeforeToday(t *testing.T) {
	original := appLocation
	t.Cleanup(func() { appLocation = original })

	for _, name := range []string{"Pacific/Honolulu", "America/New_York", "UTC", "Asia/Jakarta"} {
		loc, err := time.LoadLocation(name)
		if err != nil {
			t.Fatalf("LoadLocation(%s): %v", name, err)
		}

		appLocation = loc

		today := Today()
		parsed, err := Parse("2006-01-02", today.Format("2006-01-02"))
		if err != nil {
			t.Fatalf("Parse in %s: %v", name, err)
		}

		if parsed.Before(today) {
			t.Errorf("today parsed in %s compares as past: parsed=%v today=%v", name, parsed, today)
		}

		if !parsed.Equal(today) {
			t.Errorf("today parsed in %s is not local midnight: parsed=%v today=%v", name, parsed, today)
		}
	}
}
