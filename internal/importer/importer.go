// Package importer reads package catalogs from CSV and Excel files. It
// supports automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
	"github.com/iv-stpn/container-loading-problem/internal/model"
)

// ErrNoData reports a file from which no package group could be read.
var ErrNoData = errors.New("no importable package groups")

// ImportResult holds the imported groups plus anything worth telling the
// user about: skipped rows, detected delimiters, defaulted values.
type ImportResult struct {
	Groups   []model.PackageGroup
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Quantity int
	Length   int
	Width    int
	Height   int
	Type     int
}

// headerAliases maps canonical column names to their accepted aliases (all
// lowercase). The alias sets are disjoint, so each header cell resolves to
// at most one role.
var headerAliases = map[string][]string{
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	"length":   {"length", "len", "l", "x", "depth", "d"},
	"width":    {"width", "w", "y"},
	"height":   {"height", "h", "z"},
	"type":     {"type", "group", "category", "kind", "class"},
}

// DetectCSVDelimiter determines the most likely CSV delimiter. It tries
// comma, semicolon, tab, and pipe; the delimiter producing the most
// consistent multi-column rows wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping. Matching
// is case-insensitive against the known aliases. Returns the mapping and
// true if a header was detected, or the positional default
// (quantity, length, width, height, type) and false otherwise.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Quantity: -1,
		Length:   -1,
		Width:    -1,
		Height:   -1,
		Type:     -1,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "quantity":
					if mapping.Quantity == -1 {
						mapping.Quantity = i
					}
				case "length":
					if mapping.Length == -1 {
						mapping.Length = i
					}
				case "width":
					if mapping.Width == -1 {
						mapping.Width = i
					}
				case "height":
					if mapping.Height == -1 {
						mapping.Height = i
					}
				case "type":
					if mapping.Type == -1 {
						mapping.Type = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{
			Quantity: 0,
			Length:   1,
			Width:    2,
			Height:   3,
			Type:     4,
		}, false
	}

	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a package group from a row using the given column
// mapping. Returns the group, a skip reason, and a warning.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.PackageGroup, string, string) {
	qtyStr := getCell(row, mapping.Quantity)
	if qtyStr == "" {
		return model.PackageGroup{}, fmt.Sprintf("%s: missing quantity", rowLabel), ""
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		return model.PackageGroup{}, fmt.Sprintf("%s: invalid quantity %q", rowLabel, qtyStr), ""
	}

	axes := []struct {
		axis int
		name string
		idx  int
	}{
		{geometry.AxisX, "length", mapping.Length},
		{geometry.AxisY, "width", mapping.Width},
		{geometry.AxisZ, "height", mapping.Height},
	}
	var dims geometry.Vector
	for _, a := range axes {
		raw := getCell(row, a.idx)
		if raw == "" {
			return model.PackageGroup{}, fmt.Sprintf("%s: missing %s", rowLabel, a.name), ""
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			return model.PackageGroup{}, fmt.Sprintf("%s: invalid %s %q", rowLabel, a.name, raw), ""
		}
		dims[a.axis] = value
	}

	if qty <= 0 || !dims.Positive() {
		return model.PackageGroup{}, fmt.Sprintf("%s: quantity and dimensions must be positive", rowLabel), ""
	}

	group := model.NewPackageGroup(qty, dims)

	var warning string
	if typeStr := getCell(row, mapping.Type); typeStr != "" {
		if pkgType, err := strconv.Atoi(typeStr); err == nil && pkgType >= 0 {
			group.Type = pkgType
		} else {
			warning = fmt.Sprintf("%s: unknown type %q, leaving the group untyped", rowLabel, typeStr)
		}
	}

	return group, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports package groups from a CSV file, detecting the delimiter
// and mapping columns by header names.
func ImportCSV(path string) (*ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoData, path)
	}

	var warnings []string
	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	return importFromRows(records, "line", warnings)
}

// ImportCSVFromReader imports package groups from a CSV reader with a known
// delimiter.
func ImportCSVFromReader(r io.Reader, delimiter rune) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	return importFromRows(records, "line", nil)
}

// ImportXLSX imports package groups from the first sheet of an Excel file.
func ImportXLSX(path string) (*ImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrNoData)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read Excel data: %w", err)
	}
	return importFromRows(rows, "row", nil)
}

// importFromRows is the shared import logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, warnings []string) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrNoData)
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		var missing []string
		if mapping.Quantity == -1 {
			missing = append(missing, "quantity")
		}
		if mapping.Length == -1 {
			missing = append(missing, "length")
		}
		if mapping.Width == -1 {
			missing = append(missing, "width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "height")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: header misses required columns: %s", ErrNoData, strings.Join(missing, ", "))
		}
	} else if len(rows[0]) >= 4 {
		// An unrecognized header still reads as a non-numeric first cell.
		if _, err := strconv.Atoi(strings.TrimSpace(rows[0][0])); err != nil {
			startRow = 1
			warnings = append(warnings, "skipping unrecognized header row")
		}
	}

	result := &ImportResult{Warnings: warnings}
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		group, skip, warning := parseRow(row, mapping, rowLabel)
		if skip != "" {
			result.Warnings = append(result.Warnings, skip)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Groups = append(result.Groups, group)
	}

	if len(result.Groups) == 0 {
		return nil, ErrNoData
	}
	return result, nil
}
