package csvfile

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/grand-island-pumptest/internal/domain"
)

var (
	seriesHeader = []string{"date", "time", "drawdown (ft)"}
	siteHeader   = []string{
		"well", "line", "diameter (in)", "screen length (ft)", "screen depth (ft BMP)",
		"measuring point (ft ALS)", "altitude (ft AMSL)", "distance (ft)", "water level (ft BMP)",
	}
)

// WriteSeries writes a series as <prefix><id><suffix> and returns its path.
func (s *Store) WriteSeries(series domain.Series) (string, error) {
	path := filepath.Join(s.dir, s.prefix+series.WellID+s.suffix)
	rows := make([][]string, 0, len(series.Observations)+1)
	rows = append(rows, seriesHeader)
	for _, o := range series.Observations {
		rows = append(rows, []string{
			o.Time.Format("01/02/2006"),
			o.Time.Format("15:04:05"),
			strconv.FormatFloat(o.Drawdown, 'f', 3, 64),
		})
	}
	return path, writeAll(path, rows)
}

// WriteSite writes the metadata table and returns its path. NaN cells are left blank.
func (s *Store) WriteSite(site domain.Site) (string, error) {
	path := filepath.Join(s.dir, s.metadata)
	rows := make([][]string, 0, len(site.Wells)+1)
	rows = append(rows, siteHeader)
	for _, w := range site.Wells {
		rows = append(rows, []string{
			w.ID, w.Line,
			formatCell(w.Diameter),
			formatCell(w.ScreenLength),
			formatCell(w.ScreenDepth),
			formatCell(w.MeasuringPointHeight),
			formatCell(w.Elevation),
			formatCell(w.RadialDistance),
			formatCell(w.InitialWaterLevel),
		})
	}
	return path, writeAll(path, rows)
}

func writeAll(path string, rows [][]string) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(fh)
	if err := w.WriteAll(rows); err != nil {
		_ = fh.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return fh.Close()
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
