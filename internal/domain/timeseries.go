package domain

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are the accepted combined "date time" forms, tried in order.
var timestampLayouts = []string{
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
}

// ParseTimestamp combines a date and a time field into a UTC instant.
func ParseTimestamp(date, clock string) (time.Time, error) {
	return ParseDateTime(strings.TrimSpace(date) + " " + strings.TrimSpace(clock))
}

// ParseDateTime parses a combined "date time" string in any accepted layout.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised timestamp %q", ErrMalformedRecord, s)
}

// TestWindow holds the two reference instants of the pumping test.
type TestWindow struct {
	Start time.Time // pump on
	Stop  time.Time // pump off
}

// DefaultTestWindow returns the 1931 Grand Island pumping period.
func DefaultTestWindow() TestWindow {
	return TestWindow{
		Start: time.Date(1931, time.July, 29, 6, 5, 0, 0, time.UTC),
		Stop:  time.Date(1931, time.July, 31, 6, 4, 0, 0, time.UTC),
	}
}

// ElapsedMinutes returns minutes since pump start (days x 1440).
func (w TestWindow) ElapsedMinutes(t time.Time) float64 {
	return t.Sub(w.Start).Minutes()
}

// DurationMinutes returns the pumping duration in minutes.
func (w TestWindow) DurationMinutes() float64 {
	return w.ElapsedMinutes(w.Stop)
}

// Drawdown is a well's series expressed against elapsed time. Elapsed and
// Drawdown are parallel.
type Drawdown struct {
	WellID   string
	Elapsed  []float64 // minutes since pump start
	Drawdown []float64 // ft
}

// Len returns the number of samples.
func (d Drawdown) Len() int { return len(d.Elapsed) }

// Normalize converts a series to elapsed minutes, keeping only samples at or
// after pump start.
func Normalize(s Series, w TestWindow) Drawdown {
	out := Drawdown{
		WellID:   s.WellID,
		Elapsed:  make([]float64, 0, len(s.Observations)),
		Drawdown: make([]float64, 0, len(s.Observations)),
	}
	for _, o := range s.Observations {
		if o.Time.Before(w.Start) {
			continue
		}
		out.Elapsed = append(out.Elapsed, w.ElapsedMinutes(o.Time))
		out.Drawdown = append(out.Drawdown, o.Drawdown)
	}
	return out
}

// RisingLimb returns the part of the series from pump start up to and
// including the time of the maximum drawdown over the whole series. This
// excludes recovery.
func RisingLimb(s Series, w TestWindow) Drawdown {
	out := Drawdown{WellID: s.WellID}
	if len(s.Observations) == 0 {
		return out
	}

	peak := 0
	for i, o := range s.Observations {
		if o.Drawdown > s.Observations[peak].Drawdown {
			peak = i
		}
	}
	peakTime := s.Observations[peak].Time

	for _, o := range s.Observations {
		if o.Time.Before(w.Start) || o.Time.After(peakTime) {
			continue
		}
		out.Elapsed = append(out.Elapsed, w.ElapsedMinutes(o.Time))
		out.Drawdown = append(out.Drawdown, o.Drawdown)
	}
	return out
}

// SamplingIntervals returns the gap in minutes before each sample after the
// first, paired with that sample's elapsed time.
func SamplingIntervals(d Drawdown) (elapsed, gaps []float64) {
	if d.Len() < 2 {
		return nil, nil
	}
	elapsed = make([]float64, 0, d.Len()-1)
	gaps = make([]float64, 0, d.Len()-1)
	for i := 1; i < d.Len(); i++ {
		elapsed = append(elapsed, d.Elapsed[i])
		gaps = append(gaps, d.Elapsed[i]-d.Elapsed[i-1])
	}
	return elapsed, gaps
}
