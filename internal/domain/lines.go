package domain

import (
	"fmt"
	"math"
	"sort"
)

// LineTable is the per-line configuration data: the bearing of each line on
// the Wenzel map and the colour it is drawn with.
type LineTable struct {
	Angles map[string]float64 `yaml:"angles"` // degrees, east = 0, north = 90
	Colors map[string]string  `yaml:"colors"` // CSS colour names
}

// DefaultLineTable returns the bearings measured from the Wenzel map and the
// colours of the published aggregate plot.
func DefaultLineTable() LineTable {
	return LineTable{
		Angles: map[string]float64{
			"A": 114, "B": 205, "C": 294, "D": 25,
			"W": 160, "SW": 186, "S": 238, "N": 70,
		},
		Colors: map[string]string{
			"A": "red", "B": "green", "C": "magenta", "D": "cyan",
			"W": "pink", "N": "orange", "S": "black", "SW": "purple",
		},
	}
}

// Merge returns a copy of t with every entry of o applied on top.
func (t LineTable) Merge(o LineTable) LineTable {
	out := LineTable{
		Angles: make(map[string]float64, len(t.Angles)+len(o.Angles)),
		Colors: make(map[string]string, len(t.Colors)+len(o.Colors)),
	}
	for k, v := range t.Angles {
		out.Angles[k] = v
	}
	for k, v := range o.Angles {
		out.Angles[k] = v
	}
	for k, v := range t.Colors {
		out.Colors[k] = v
	}
	for k, v := range o.Colors {
		out.Colors[k] = v
	}
	return out
}

// Angle returns the bearing of a line in degrees.
func (t LineTable) Angle(line string) (float64, error) {
	a, ok := t.Angles[line]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLine, line)
	}
	return a, nil
}

// Lines returns the line codes with a bearing, sorted.
func (t LineTable) Lines() []string {
	lines := make([]string, 0, len(t.Angles))
	for k := range t.Angles {
		lines = append(lines, k)
	}
	sort.Strings(lines)
	return lines
}

// Validate checks that every angle is finite.
func (t LineTable) Validate() error {
	for _, line := range t.Lines() {
		if a := t.Angles[line]; math.IsNaN(a) || math.IsInf(a, 0) {
			return fmt.Errorf("line %s: invalid angle %g", line, a)
		}
	}
	return nil
}
