package columnar

import (
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ajitpratap0/docframe/pkg/schema"
)

const (
	secondsPerDay = 86_400
	nanosPerSec   = 1_000_000_000
)

// Layouts tried, in order, when text lands in a temporal column. Zone-less
// layouts are read as UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"20060102",
}

// parseTime recognizes the datetime and date text shapes in dateTimeLayouts.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// instant reduces a temporal-compatible value to whole seconds since the
// epoch plus a non-negative nanosecond remainder.
func instant(raw interface{}) (sec, nsec int64, ok bool) {
	switch v := raw.(type) {
	case primitive.DateTime:
		ms := int64(v)
		return floorDiv(ms, 1_000), floorMod(ms, 1_000) * 1_000_000, true
	case time.Time:
		return v.Unix(), int64(v.Nanosecond()), true
	case primitive.Timestamp:
		return int64(v.T), 0, true
	case string:
		t, ok := parseTime(v)
		if !ok {
			return 0, 0, false
		}
		return t.Unix(), int64(t.Nanosecond()), true
	}
	return 0, 0, false
}

// toUnit expresses an instant in unit, failing when the result does not fit
// an int64.
func toUnit(sec, nsec int64, unit schema.TimeUnit) (int64, bool) {
	var perSec int64
	switch unit {
	case schema.Second:
		return sec, true
	case schema.Millisecond:
		perSec = 1_000
	case schema.Microsecond:
		perSec = 1_000_000
	default:
		perSec = nanosPerSec
	}

	scaled, ok := mulInt64(sec, perSec)
	if !ok {
		return 0, false
	}
	frac := nsec / (nanosPerSec / perSec)
	if scaled > math.MaxInt64-frac {
		return 0, false
	}
	return scaled + frac, true
}

// toDays floors an instant to days since the epoch.
func toDays(sec int64) (int32, bool) {
	days := floorDiv(sec, secondsPerDay)
	if days < math.MinInt32 || days > math.MaxInt32 {
		return 0, false
	}
	return int32(days), true
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, true
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
