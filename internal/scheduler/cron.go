// Package scheduler implements the task lifecycle, cron/natural-language
// scheduling, and bounded child-process execution of spec.md §4.11.
package scheduler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// nlParser resolves natural-language schedule phrases to a clock time
// via the en/common rule sets. It only ever anchors "at HH:MM" style
// phrases; the handful of recognized phrase shapes below are matched
// first, so when is used narrowly rather than as an open-ended NLP front end.
var nlParser = newNLParser()

func newNLParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

var (
	everyNUnitPattern = regexp.MustCompile(`^every\s+(\d+)\s+(minute|minutes|hour|hours)$`)
	dailyAtPattern    = regexp.MustCompile(`^daily\s+at\s+(.+)$`)
	weekdaysAtPattern = regexp.MustCompile(`^weekdays\s+at\s+(.+)$`)
	weeklyOnPattern   = regexp.MustCompile(`^weekly\s+on\s+(\w+)\s+at\s+(.+)$`)
	hourlyPattern     = regexp.MustCompile(`^hourly$`)
)

var weekdayNumbers = map[string]int{
	"sunday": 0, "monday": 1, "tuesday": 2, "wednesday": 3,
	"thursday": 4, "friday": 5, "saturday": 6,
}

// ErrUnrecognizedSchedule is returned when an expression is neither a
// valid 5-field cron expression nor one of the recognized
// natural-language phrases.
type ErrUnrecognizedSchedule struct {
	Expression string
}

func (e *ErrUnrecognizedSchedule) Error() string {
	return fmt.Sprintf("scheduler: unrecognized schedule expression %q (expected a 5-field cron expression or a phrase like \"daily at 9am\", \"every 5 minutes\", \"weekdays at 9am\")", e.Expression)
}

// ResolveCronExpression accepts either a raw 5-field cron expression or
// one of the recognized natural-language phrases and returns the
// canonical cron expression (spec.md §4.11 add()).
func ResolveCronExpression(expr string) (string, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return "", &ErrUnrecognizedSchedule{Expression: expr}
	}

	if fields := strings.Fields(trimmed); len(fields) == 5 {
		if err := ValidateCronExpression(trimmed); err == nil {
			return trimmed, nil
		}
	}

	cronExpr, ok, err := parsePhrase(strings.ToLower(trimmed))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &ErrUnrecognizedSchedule{Expression: expr}
	}
	return cronExpr, nil
}

func parsePhrase(phrase string) (string, bool, error) {
	switch {
	case hourlyPattern.MatchString(phrase):
		return "0 * * * *", true, nil

	case everyNUnitPattern.MatchString(phrase):
		m := everyNUnitPattern.FindStringSubmatch(phrase)
		n, _ := strconv.Atoi(m[1])
		if n <= 0 {
			return "", false, fmt.Errorf("scheduler: interval must be positive in %q", phrase)
		}
		if strings.HasPrefix(m[2], "minute") {
			if n > 59 {
				return "", false, fmt.Errorf("scheduler: minute interval %d out of range in %q", n, phrase)
			}
			return fmt.Sprintf("*/%d * * * *", n), true, nil
		}
		if n > 23 {
			return "", false, fmt.Errorf("scheduler: hour interval %d out of range in %q", n, phrase)
		}
		return fmt.Sprintf("0 */%d * * *", n), true, nil

	case weekdaysAtPattern.MatchString(phrase):
		m := weekdaysAtPattern.FindStringSubmatch(phrase)
		hour, minute, err := resolveClockTime(m[1])
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%d %d * * 1-5", minute, hour), true, nil

	case weeklyOnPattern.MatchString(phrase):
		m := weeklyOnPattern.FindStringSubmatch(phrase)
		dow, ok := weekdayNumbers[m[1]]
		if !ok {
			return "", false, fmt.Errorf("scheduler: unrecognized day of week %q", m[1])
		}
		hour, minute, err := resolveClockTime(m[2])
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%d %d * * %d", minute, hour, dow), true, nil

	case dailyAtPattern.MatchString(phrase):
		m := dailyAtPattern.FindStringSubmatch(phrase)
		hour, minute, err := resolveClockTime(m[1])
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%d %d * * *", minute, hour), true, nil
	}

	return "", false, nil
}

// resolveClockTime anchors a clock-time fragment like "9am" or "9:30 pm"
// against a fixed reference instant and returns the hour/minute it
// names, using the en/common when rule sets to do the actual
// parsing of informal time text.
func resolveClockTime(fragment string) (hour, minute int, err error) {
	reference := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := nlParser.Parse("at "+strings.TrimSpace(fragment), reference)
	if err != nil {
		return 0, 0, fmt.Errorf("scheduler: parsing time %q: %w", fragment, err)
	}
	if r == nil {
		return 0, 0, fmt.Errorf("scheduler: could not resolve a clock time from %q", fragment)
	}
	return r.Time.Hour(), r.Time.Minute(), nil
}

// cronField is one of the five space-separated fields of a cron
// expression; it matches a value against its parsed ranges/steps.
type cronField struct {
	min, max int
	ranges   []cronRange
}

type cronRange struct {
	lo, hi, step int
}

// ValidateCronExpression checks that expr is a syntactically valid
// 5-field cron expression (minute hour day-of-month month day-of-week).
func ValidateCronExpression(expr string) error {
	_, err := parseCronFields(expr)
	return err
}

func parseCronFields(expr string) ([5]cronField, error) {
	var fields [5]cronField
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return fields, fmt.Errorf("scheduler: cron expression %q must have 5 fields, got %d", expr, len(parts))
	}

	bounds := [5][2]int{{0, 59}, {0, 23}, {1, 31}, {1, 12}, {0, 6}}
	names := [5]string{"minute", "hour", "day-of-month", "month", "day-of-week"}

	for i, part := range parts {
		f, err := parseCronField(part, bounds[i][0], bounds[i][1])
		if err != nil {
			return fields, fmt.Errorf("scheduler: %s field %q: %w", names[i], part, err)
		}
		fields[i] = f
	}
	return fields, nil
}

func parseCronField(spec string, min, max int) (cronField, error) {
	f := cronField{min: min, max: max}
	for _, token := range strings.Split(spec, ",") {
		rng, err := parseCronRange(token, min, max)
		if err != nil {
			return f, err
		}
		f.ranges = append(f.ranges, rng)
	}
	return f, nil
}

func parseCronRange(token string, min, max int) (cronRange, error) {
	step := 1
	base := token
	if idx := strings.IndexByte(token, '/'); idx >= 0 {
		base = token[:idx]
		n, err := strconv.Atoi(token[idx+1:])
		if err != nil || n <= 0 {
			return cronRange{}, fmt.Errorf("invalid step %q", token[idx+1:])
		}
		step = n
	}

	if base == "*" {
		return cronRange{lo: min, hi: max, step: step}, nil
	}

	if idx := strings.IndexByte(base, '-'); idx >= 0 {
		lo, err1 := strconv.Atoi(base[:idx])
		hi, err2 := strconv.Atoi(base[idx+1:])
		if err1 != nil || err2 != nil || lo > hi || lo < min || hi > max {
			return cronRange{}, fmt.Errorf("invalid range %q (bounds %d-%d)", base, min, max)
		}
		return cronRange{lo: lo, hi: hi, step: step}, nil
	}

	n, err := strconv.Atoi(base)
	if err != nil || n < min || n > max {
		return cronRange{}, fmt.Errorf("invalid value %q (bounds %d-%d)", base, min, max)
	}
	return cronRange{lo: n, hi: n, step: step}, nil
}

func (f cronField) matches(v int) bool {
	for _, r := range f.ranges {
		if v < r.lo || v > r.hi {
			continue
		}
		if (v-r.lo)%r.step == 0 {
			return true
		}
	}
	return false
}

// GetNextRuns returns the next n firing times of expr in the given
// timezone ("local" means the process timezone), starting strictly
// after from.
func GetNextRuns(expr string, n int, timezone string, from time.Time) ([]time.Time, error) {
	fields, err := parseCronFields(expr)
	if err != nil {
		return nil, err
	}

	loc := time.Local
	if timezone != "" && timezone != "local" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("scheduler: unknown timezone %q: %w", timezone, err)
		}
		loc = l
	}

	t := from.In(loc).Truncate(time.Minute).Add(time.Minute)
	const maxIterations = 4 * 366 * 24 * 60 // ~4 years of minutes
	var out []time.Time
	for i := 0; i < maxIterations && len(out) < n; i++ {
		if cronMatches(fields, t) {
			out = append(out, t)
		}
		t = t.Add(time.Minute)
	}
	if len(out) < n {
		return out, fmt.Errorf("scheduler: could not find %d future runs for %q within the search horizon", n, expr)
	}
	return out, nil
}

func cronMatches(fields [5]cronField, t time.Time) bool {
	if !fields[0].matches(t.Minute()) {
		return false
	}
	if !fields[1].matches(t.Hour()) {
		return false
	}
	if !fields[3].matches(int(t.Month())) {
		return false
	}
	domOK := fields[2].matches(t.Day())
	dowOK := fields[4].matches(int(t.Weekday()))
	// Cron semantics: when both day-of-month and day-of-week are
	// restricted (not "*"), a match on either is sufficient.
	domIsWild := isWildField(fields[2])
	dowIsWild := isWildField(fields[4])
	switch {
	case domIsWild && dowIsWild:
		return true
	case domIsWild:
		return dowOK
	case dowIsWild:
		return domOK
	default:
		return domOK || dowOK
	}
}

func isWildField(f cronField) bool {
	return len(f.ranges) == 1 && f.ranges[0].lo == f.min && f.ranges[0].hi == f.max && f.ranges[0].step == 1
}
