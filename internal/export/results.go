package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/iv-stpn/container-loading-problem/internal/engine"
	"github.com/iv-stpn/container-loading-problem/internal/model"
)

// resultsHeader lists the sweep report columns: the scenario name, the
// statistics columns, and a marker for the best trial.
func resultsHeader() []string {
	header := make([]string, 0, len(model.StatisticsHeader)+2)
	header = append(header, "Scenario")
	header = append(header, model.StatisticsHeader...)
	header = append(header, "Best")
	return header
}

// WriteResultsCSV writes the sweep results to w, one row per trial in
// scenario order. Failed trials carry the error message in the Run column;
// the trial with the highest placed ratio is marked in the Best column.
func WriteResultsCSV(w io.Writer, results []engine.TrialResult) error {
	best := engine.BestByPlacedRatio(results)

	cw := csv.NewWriter(w)
	if err := cw.Write(resultsHeader()); err != nil {
		return err
	}
	for i, r := range results {
		if err := cw.Write(resultRow(r, i == best)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveResultsCSV writes the sweep results to a CSV file at the given path.
func SaveResultsCSV(path string, results []engine.TrialResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	if err := WriteResultsCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// resultRow renders one trial as report cells aligned with resultsHeader.
func resultRow(r engine.TrialResult, best bool) []string {
	row := make([]string, 0, len(model.StatisticsHeader)+2)
	row = append(row, r.Scenario.Name)
	if r.Err != nil {
		row = append(row, "error: "+r.Err.Error())
		for len(row) < len(model.StatisticsHeader)+1 {
			row = append(row, "")
		}
	} else {
		row = append(row, r.Stats.Row()...)
	}
	if best {
		row = append(row, "yes")
	} else {
		row = append(row, "")
	}
	return row
}

// SaveResultsXLSX writes the sweep results as a workbook, one row per trial,
// with the best trial's row in bold.
func SaveResultsXLSX(path string, results []engine.TrialResult) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := resultsHeader()
	headerCells := make([]interface{}, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return err
	}

	best := engine.BestByPlacedRatio(results)
	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := xlsxRow(r, i == best)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if best >= 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		start, err := excelize.CoordinatesToCellName(1, best+2)
		if err != nil {
			return err
		}
		end, err := excelize.CoordinatesToCellName(len(header), best+2)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, start, end, bold); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// xlsxRow renders one trial as workbook cells, numeric columns as numbers.
func xlsxRow(r engine.TrialResult, best bool) []interface{} {
	row := make([]interface{}, 0, len(model.StatisticsHeader)+2)
	row = append(row, r.Scenario.Name)
	if r.Err != nil {
		row = append(row, "error: "+r.Err.Error())
		for len(row) < len(model.StatisticsHeader)+1 {
			row = append(row, "")
		}
	} else {
		s := r.Stats
		row = append(row, s.Run, s.Time, s.PlacedN, s.PlacedVol, s.RemainingN, s.RemainingVol, s.PlacedRatio, s.FillingRatio)
	}
	if best {
		row = append(row, "yes")
	} else {
		row = append(row, "")
	}
	return row
}
