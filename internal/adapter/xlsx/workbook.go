// Package xlsx exports resolved well geometry and derivative samples as an
// Excel workbook.
package xlsx

import (
	"fmt"
	"math"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/grand-island-pumptest/internal/domain"
)

// Sheet names.
const (
	WellsSheet       = "wells"
	DerivativesSheet = "derivatives"
)

var (
	wellsHeader       = []any{"well", "line", "radius (ft)", "x (ft)", "y (ft)", "elevation (ft AMSL)", "land surface (ft AMSL)", "water table (ft AMSL)"}
	derivativesHeader = []any{"well", "elapsed (min)", "fitted drawdown (ft)", "ds/dln(t) (ft)", "smoothing"}
)

// Workbook collects derivatives during a run and writes everything on Save.
type Workbook struct {
	path        string
	coordinates []domain.SiteCoordinate
	site        domain.Site
	derivatives map[string]domain.Derivative
}

// NewWorkbook returns a workbook that will be written to path.
func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path, derivatives: make(map[string]domain.Derivative)}
}

// Path returns the output file.
func (w *Workbook) Path() string { return w.path }

// AddDerivative records a well's fitted rising limb.
func (w *Workbook) AddDerivative(d domain.Derivative) {
	w.derivatives[d.WellID] = d
}

// SetSite records the metadata table and the resolved coordinates, which
// must be parallel to site.Wells.
func (w *Workbook) SetSite(site domain.Site, coords []domain.SiteCoordinate) {
	w.site = site
	w.coordinates = coords
}

// Save writes the workbook, replacing any existing file.
func (w *Workbook) Save() error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), WellsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := w.writeWells(f); err != nil {
		return err
	}
	if _, err := f.NewSheet(DerivativesSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", DerivativesSheet, err)
	}
	if err := w.writeDerivatives(f); err != nil {
		return err
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	return nil
}

func (w *Workbook) writeWells(f *excelize.File) error {
	if err := setRow(f, WellsSheet, 1, wellsHeader); err != nil {
		return err
	}
	for i, well := range w.site.Wells {
		row := []any{well.ID, well.Line, cell(well.RadialDistance), nil, nil,
			cell(well.Elevation), cell(well.LandSurface()), cell(well.WaterTable())}
		if i < len(w.coordinates) {
			row[3], row[4] = w.coordinates[i].X, w.coordinates[i].Y
		}
		if err := setRow(f, WellsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workbook) writeDerivatives(f *excelize.File) error {
	if err := setRow(f, DerivativesSheet, 1, derivativesHeader); err != nil {
		return err
	}
	ids := make([]string, 0, len(w.derivatives))
	for id := range w.derivatives {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	r := 2
	for _, id := range ids {
		d := w.derivatives[id]
		for _, s := range d.Samples {
			if err := setRow(f, DerivativesSheet, r, []any{id, s.Elapsed, cell(s.Fitted), cell(s.Slope), d.Smoothing}); err != nil {
				return err
			}
			r++
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	addr, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, addr, &values); err != nil {
		return fmt.Errorf("sheet %s row %d: %w", sheet, row, err)
	}
	return nil
}

// cell leaves NaN and infinite values blank.
func cell(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
