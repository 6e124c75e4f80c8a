// Package csvfile reads and writes the Grand Island observation and
// metadata tables as comma-separated files in a single directory.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/grand-island-pumptest/internal/domain"
)

// metadataColumns is the column count of the well metadata table.
const metadataColumns = 9

// Store locates observation files by name convention under a data directory.
type Store struct {
	dir      string
	prefix   string
	suffix   string
	metadata string
	logger   *slog.Logger
}

// NewStore returns a Store reading <dir>/<prefix><id><suffix> observation
// files and the <dir>/<metadata> well table.
func NewStore(dir, prefix, suffix, metadata string, logger *slog.Logger) *Store {
	return &Store{dir: dir, prefix: prefix, suffix: suffix, metadata: metadata, logger: logger}
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Discover lists the observation files sorted by name. The metadata table and
// any name containing "info" are excluded.
func (s *Store) Discover() ([]domain.WellFile, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, globEscape(s.prefix)+"*"+globEscape(s.suffix)))
	if err != nil {
		return nil, fmt.Errorf("discover observation files: %w", err)
	}
	sort.Strings(matches)

	files := make([]domain.WellFile, 0, len(matches))
	for _, path := range matches {
		base := filepath.Base(path)
		if strings.Contains(base, "info") || base == s.metadata {
			continue
		}
		id, err := domain.ParseWellFileName(base, s.prefix, s.suffix)
		if err != nil {
			s.logger.Debug("ignoring file", "path", path, "error", err)
			continue
		}
		files = append(files, domain.WellFile{ID: id, Path: path})
	}
	return files, nil
}

// LoadSeries parses a date,time,drawdown file. The first row is a header.
// Unparseable rows yield an error wrapping domain.ErrMalformedRecord that
// names the line; open and read failures are returned unwrapped.
func (s *Store) LoadSeries(f domain.WellFile) (domain.Series, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return domain.Series{}, fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer fh.Close()

	r := newReader(fh)
	series := domain.Series{WellID: f.ID}
	for line := 1; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Series{}, readError(f.Path, line, err)
		}
		if line == 1 {
			continue
		}
		if len(rec) < 3 {
			return domain.Series{}, fmt.Errorf("%s line %d: %w: want 3 fields, have %d", f.Path, line, domain.ErrMalformedRecord, len(rec))
		}

		ts, err := domain.ParseTimestamp(rec[0], rec[1])
		if err != nil {
			return domain.Series{}, fmt.Errorf("%s line %d: %w", f.Path, line, err)
		}
		dd, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return domain.Series{}, fmt.Errorf("%s line %d: %w: drawdown %q", f.Path, line, domain.ErrMalformedRecord, rec[2])
		}
		series.Observations = append(series.Observations, domain.Observation{Time: ts, Drawdown: dd})
	}

	sort.SliceStable(series.Observations, func(i, j int) bool {
		return series.Observations[i].Time.Before(series.Observations[j].Time)
	})
	return series, nil
}

// LoadSite parses the nine-column well metadata table. Blank numeric cells
// load as NaN.
func (s *Store) LoadSite() (domain.Site, error) {
	path := filepath.Join(s.dir, s.metadata)
	fh, err := os.Open(path)
	if err != nil {
		return domain.Site{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()

	r := newReader(fh)
	var site domain.Site
	for line := 1; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Site{}, readError(path, line, err)
		}
		if line == 1 {
			continue
		}
		if len(rec) < metadataColumns {
			return domain.Site{}, fmt.Errorf("%s line %d: %w: want %d fields, have %d", path, line, domain.ErrMalformedRecord, metadataColumns, len(rec))
		}

		var nums [metadataColumns - 2]float64
		for i := range nums {
			v, err := parseCell(rec[i+2])
			if err != nil {
				return domain.Site{}, fmt.Errorf("%s line %d column %d: %w: %q", path, line, i+3, domain.ErrMalformedRecord, rec[i+2])
			}
			nums[i] = v
		}
		site.Wells = append(site.Wells, domain.WellInfo{
			ID:                   strings.TrimSpace(rec[0]),
			Line:                 strings.TrimSpace(rec[1]),
			Diameter:             nums[0],
			ScreenLength:         nums[1],
			ScreenDepth:          nums[2],
			MeasuringPointHeight: nums[3],
			Elevation:            nums[4],
			RadialDistance:       nums[5],
			InitialWaterLevel:    nums[6],
		})
	}
	return site, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	return cr
}

// readError separates csv syntax errors, which are malformed records, from
// I/O failures.
func readError(path string, line int, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%s line %d: %w: %v", path, pe.Line, domain.ErrMalformedRecord, pe.Err)
	}
	return fmt.Errorf("read %s line %d: %w", path, line, err)
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func globEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`)
	return r.Replace(s)
}
