// Package catalogexport writes a pipeline catalog to an Excel workbook.
package catalogexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/acribbs/trnanalysis/internal/pipeline"
)

// Sheet names in the exported workbook.
const (
	PipelinesSheet  = "Pipelines"
	SearchPathSheet = "SearchPath"
)

// Sheet is one worksheet of string cells.
type Sheet struct {
	Name string
	Rows [][]string
}

// Sheets lays out the catalog as two worksheets: one row per pipeline,
// then one row per search directory with its status.
func Sheets(cat *pipeline.Catalog) []Sheet {
	pipelines := Sheet{
		Name: PipelinesSheet,
		Rows: [][]string{{"Command", "Identifier", "Runtime", "Path", "Version", "Description"}},
	}
	for _, e := range cat.Entries {
		interp := e.Runtime.Interpreter
		if interp == "" {
			interp = "(direct)"
		}
		pipelines.Rows = append(pipelines.Rows, []string{
			e.Command, e.Identifier, interp, e.Path, e.Version, e.Description,
		})
	}

	skipped := make(map[string]string, len(cat.Skipped))
	for _, s := range cat.Skipped {
		skipped[s.Dir] = s.Reason
	}
	searchPath := Sheet{
		Name: SearchPathSheet,
		Rows: [][]string{{"Order", "Directory", "Status"}},
	}
	for i, dir := range cat.SearchPath {
		status := "ok"
		if reason, ok := skipped[dir]; ok {
			status = "skipped: " + reason
		}
		searchPath.Rows = append(searchPath.Rows, []string{fmt.Sprint(i + 1), dir, status})
	}

	return []Sheet{pipelines, searchPath}
}

// WriteXLSX saves the catalog as an .xlsx file at path.
func WriteXLSX(cat *pipeline.Catalog, path string) error {
	f, err := build(cat)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}
	return nil
}

// EncodeXLSX writes the catalog workbook to w.
func EncodeXLSX(cat *pipeline.Catalog, w io.Writer) error {
	f, err := build(cat)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("could not write workbook: %w", err)
	}
	return nil
}

func build(cat *pipeline.Catalog) (*excelize.File, error) {
	f := excelize.NewFile()

	for i, sheet := range Sheets(cat) {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				f.Close()
				return nil, fmt.Errorf("could not rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("could not create sheet %q: %w", sheet.Name, err)
		}

		for rowIdx, row := range sheet.Rows {
			cellName, err := excelize.CoordinatesToCellName(1, rowIdx+1)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("invalid cell coordinates: %w", err)
			}
			if err := f.SetSheetRow(sheet.Name, cellName, &row); err != nil {
				f.Close()
				return nil, fmt.Errorf("could not write row %d of %s: %w", rowIdx+1, sheet.Name, err)
			}
		}
		if err := f.SetPanes(sheet.Name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			f.Close()
			return nil, fmt.Errorf("could not freeze header of %s: %w", sheet.Name, err)
		}
	}

	return f, nil
}
