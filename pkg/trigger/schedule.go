package trigger

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ParseCron parses a standard 5-field cron expression (minute, hour,
// day-of-month, month, day-of-week), evaluated in UTC.
func ParseCron(spec string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return sched, nil
}

// NextFire returns the first fire time strictly after the given instant.
func NextFire(spec string, after time.Time) (time.Time, error) {
	sched, err := ParseCron(spec)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(after.UTC()), nil
}
