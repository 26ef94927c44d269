// Package sheet reads and writes testing results as Excel workbooks.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"coalhub/model"
	"coalhub/service/catalog"
	"coalhub/service/quality"

	"github.com/xuri/excelize/v2"
)

// Sheet names of an exported workbook.
const (
	ResultsSheet  = "Results"
	WeightedSheet = "Weighted"
)

// MaxImportRows bounds the number of result rows read from one workbook.
const MaxImportRows = 10000

// ErrNoSheet is returned for a workbook without any worksheet.
var ErrNoSheet = errors.New("workbook has no sheets")

// ImportResults reads results from the first sheet of an .xlsx workbook.
//
// The first row is a header. Columns A, B and C hold the item code, value and
// weight. Rows with all three cells blank are skipped. Cell text is taken as
// is; numbers are validated when the results are aggregated.
func ImportResults(r io.Reader) ([]model.TestResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	results := make([]model.TestResult, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		code, value, weight := cell(row, 0), cell(row, 1), cell(row, 2)
		if code == "" && value == "" && weight == "" {
			continue
		}
		if len(results) == MaxImportRows {
			return nil, fmt.Errorf("workbook has more than %d result rows", MaxImportRows)
		}
		results = append(results, model.TestResult{
			ItemCode: code,
			Value:    model.Numeric(value),
			Weight:   model.Numeric(weight),
		})
	}
	return results, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ExportRecord writes rec as an .xlsx workbook to w. The Results sheet lists
// the raw results in order; the Weighted sheet lists the weighted averages
// sorted by item code, with parameter names and units from cat when known.
// cat may be nil.
func ExportRecord(w io.Writer, rec *model.TestingRecord, cat *catalog.Catalog) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", ResultsSheet)
	f.NewSheet(WeightedSheet)

	if err := f.SetSheetRow(ResultsSheet, "A1", &[]interface{}{"Item code", "Value", "Weight"}); err != nil {
		return fmt.Errorf("write results header: %w", err)
	}
	for i, res := range rec.Results {
		row := []interface{}{res.ItemCode, numberOrText(res.Value), numberOrText(res.Weight)}
		if err := f.SetSheetRow(ResultsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write result row %d: %w", i+1, err)
		}
	}

	if err := f.SetSheetRow(WeightedSheet, "A1", &[]interface{}{"Item code", "Name", "Unit", "Weighted average"}); err != nil {
		return fmt.Errorf("write weighted header: %w", err)
	}
	codes := make([]string, 0, len(rec.WeightedResults))
	for code := range rec.WeightedResults {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for i, code := range codes {
		var name, unit string
		if cat != nil {
			if p, ok := cat.Lookup(code); ok {
				name, unit = p.Name, p.Unit
			}
		}
		row := []interface{}{code, name, unit, rec.WeightedResults[code]}
		if err := f.SetSheetRow(WeightedSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write weighted row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// numberOrText keeps numeric cells numeric so spreadsheets can sum them.
func numberOrText(n model.Numeric) interface{} {
	if n.IsEmpty() {
		return nil
	}
	if v, err := quality.ParseNumber(n); err == nil {
		return v
	}
	return string(n)
}
