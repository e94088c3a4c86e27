package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const resultsSheet = "Results"

// LeagueResult is one head-to-head league match read from a results
// workbook. Names are optional and empty when the column is absent.
type LeagueResult struct {
	Gameweek     int
	Entry1       string
	Entry1Name   string
	Entry1Points int
	Entry2       string
	Entry2Name   string
	Entry2Points int
}

// resultHeaders lists the columns of a results sheet; each is matched
// case-insensitively. "GW" is accepted for Gameweek.
var resultHeaders = []string{
	"gameweek", "entry 1", "entry 1 name", "entry 1 points",
	"entry 2", "entry 2 name", "entry 2 points",
}

var optionalResultHeaders = map[string]bool{"entry 1 name": true, "entry 2 name": true}

// ReadResults reads head-to-head league results from the Results sheet of a
// workbook, or its first sheet when there is no Results sheet. Columns are
// found by header, so their order doesn't matter. Blank rows are skipped.
func ReadResults(path string) ([]LeagueResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	sheet := resultsSheet
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s sheet is empty", sheet)
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "gw" {
			h = "gameweek"
		}
		cols[h] = i
	}
	for _, h := range resultHeaders {
		if _, ok := cols[h]; !ok && !optionalResultHeaders[h] {
			return nil, fmt.Errorf("%s sheet: missing %q column", sheet, h)
		}
	}

	var results []LeagueResult
	for i, row := range rows[1:] {
		line := i + 2
		cell := func(field string) string {
			col, ok := cols[field]
			if !ok || col >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[col])
		}
		number := func(field string) (int, error) {
			n, err := strconv.Atoi(cell(field))
			if err != nil {
				return 0, fmt.Errorf("%s row %d: %s %q is not a number", sheet, line, field, cell(field))
			}
			return n, nil
		}

		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}

		r := LeagueResult{
			Entry1:     cell("entry 1"),
			Entry1Name: cell("entry 1 name"),
			Entry2:     cell("entry 2"),
			Entry2Name: cell("entry 2 name"),
		}
		if r.Entry1 == "" || r.Entry2 == "" {
			return nil, fmt.Errorf("%s row %d: both entries are required", sheet, line)
		}
		if r.Gameweek, err = number("gameweek"); err != nil {
			return nil, err
		}
		if r.Entry1Points, err = number("entry 1 points"); err != nil {
			return nil, err
		}
		if r.Entry2Points, err = number("entry 2 points"); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
