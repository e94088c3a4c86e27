package excel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/cupdraw/internal/config"
	"github.com/derekprior/cupdraw/internal/schedule"
)

const (
	drawSheet    = "Draw"
	balanceSheet = "Balance"
)

var drawHeaders = []string{"Round", "Label", "Home", "Away"}

// Generate creates a workbook with the full draw, one sheet per manager and
// a home/away balance summary.
func Generate(cfg *config.Config, result *schedule.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	if err := writeDrawSheet(f, cfg, result.Fixtures); err != nil {
		return nil, fmt.Errorf("writing draw sheet: %w", err)
	}
	if err := writeManagerSheets(f, cfg, result.Fixtures); err != nil {
		return nil, fmt.Errorf("writing manager sheets: %w", err)
	}
	if err := writeBalanceSheet(f, cfg, result.Fixtures); err != nil {
		return nil, fmt.Errorf("writing balance sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

// ReadFixtures reads the Draw sheet of a workbook back into fixtures.
// Names are mapped to participant ids through cfg; a name the config
// doesn't know is kept as-is so validation can report it.
func ReadFixtures(path string, cfg *config.Config) ([]schedule.Fixture, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return readFixtures(f, cfg)
}

func readFixtures(f *excelize.File, cfg *config.Config) ([]schedule.Fixture, error) {
	rows, err := f.GetRows(drawSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", drawSheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s sheet is empty", drawSheet)
	}

	var fixtures []schedule.Fixture
	for i, row := range rows {
		if i == 0 || len(row) < 4 {
			continue
		}
		round, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			continue
		}
		fixtures = append(fixtures, schedule.Fixture{
			Round: round,
			Label: row[1],
			Home:  participantFor(cfg, row[2]),
			Away:  participantFor(cfg, row[3]),
		})
	}
	return fixtures, nil
}

func participantFor(cfg *config.Config, name string) schedule.Participant {
	if id, ok := cfg.IDForName(name); ok {
		return id
	}
	return schedule.Participant(name)
}

// UpdateManagerSheets rebuilds the manager and balance sheets from the Draw
// sheet, so hand edits to the draw are reflected everywhere.
func UpdateManagerSheets(path string, cfg *config.Config) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	fixtures, err := readFixtures(f, cfg)
	if err != nil {
		return err
	}

	for _, name := range f.GetSheetList() {
		if name != drawSheet {
			if err := f.DeleteSheet(name); err != nil {
				return fmt.Errorf("removing sheet %q: %w", name, err)
			}
		}
	}

	if err := writeManagerSheets(f, cfg, fixtures); err != nil {
		return fmt.Errorf("writing manager sheets: %w", err)
	}
	if err := writeBalanceSheet(f, cfg, fixtures); err != nil {
		return fmt.Errorf("writing balance sheet: %w", err)
	}
	return f.Save()
}

func writeDrawSheet(f *excelize.File, cfg *config.Config, fixtures []schedule.Fixture) error {
	if _, err := f.NewSheet(drawSheet); err != nil {
		return err
	}
	if err := writeHeader(f, drawSheet, drawHeaders); err != nil {
		return err
	}

	cellStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 14, Family: "Arial"}})
	shadedStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 14, Family: "Arial"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})

	for i, fx := range fixtures {
		row := i + 2
		values := []any{fx.Round, fx.Label, cfg.DisplayName(fx.Home), cfg.DisplayName(fx.Away)}
		for col, v := range values {
			f.SetCellValue(drawSheet, cellRef(col+1, row), v)
		}
		// Alternate shading by round so round boundaries stand out.
		style := cellStyle
		if fx.Round%2 == 0 {
			style = shadedStyle
		}
		if style != 0 {
			f.SetCellStyle(drawSheet, cellRef(1, row), cellRef(len(drawHeaders), row), style)
		}
	}

	f.SetColWidth(drawSheet, "A", "A", 10)
	f.SetColWidth(drawSheet, "B", "B", 12)
	f.SetColWidth(drawSheet, "C", "D", 28)
	return nil
}

type managerFixture struct {
	round    int
	label    string
	opponent schedule.Participant
	homeAway string
}

func writeManagerSheets(f *excelize.File, cfg *config.Config, fixtures []schedule.Fixture) error {
	byManager := make(map[schedule.Participant][]managerFixture)
	for _, fx := range fixtures {
		byManager[fx.Home] = append(byManager[fx.Home], managerFixture{fx.Round, fx.Label, fx.Away, "Home"})
		byManager[fx.Away] = append(byManager[fx.Away], managerFixture{fx.Round, fx.Label, fx.Home, "Away"})
	}

	headers := []string{"Round", "Label", "Opponent", "Home/Away"}
	cellStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 14, Family: "Arial"}})

	sheets := managerSheetNames(cfg)
	for _, p := range cfg.Participants {
		sheet := sheets[p.ID]
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("sheet for %s: %w", p.ID, err)
		}
		if err := writeHeader(f, sheet, headers); err != nil {
			return err
		}

		games := byManager[schedule.Participant(p.ID)]
		sort.SliceStable(games, func(i, j int) bool { return games[i].round < games[j].round })
		for i, g := range games {
			row := i + 2
			f.SetCellValue(sheet, cellRef(1, row), g.round)
			f.SetCellValue(sheet, cellRef(2, row), g.label)
			f.SetCellValue(sheet, cellRef(3, row), cfg.DisplayName(g.opponent))
			f.SetCellValue(sheet, cellRef(4, row), g.homeAway)
			if cellStyle != 0 {
				f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), cellStyle)
			}
		}

		f.SetColWidth(sheet, "A", "B", 12)
		f.SetColWidth(sheet, "C", "C", 28)
		f.SetColWidth(sheet, "D", "D", 14)
	}
	return nil
}

func writeBalanceSheet(f *excelize.File, cfg *config.Config, fixtures []schedule.Fixture) error {
	if _, err := f.NewSheet(balanceSheet); err != nil {
		return err
	}
	headers := []string{"Manager", "Home", "Away", "Diff"}
	if err := writeHeader(f, balanceSheet, headers); err != nil {
		return err
	}

	home := make(map[schedule.Participant]int)
	away := make(map[schedule.Participant]int)
	for _, fx := range fixtures {
		home[fx.Home]++
		away[fx.Away]++
	}

	for i, p := range cfg.Participants {
		row := i + 2
		id := schedule.Participant(p.ID)
		f.SetCellValue(balanceSheet, cellRef(1, row), p.DisplayName())
		f.SetCellValue(balanceSheet, cellRef(2, row), home[id])
		f.SetCellValue(balanceSheet, cellRef(3, row), away[id])
		f.SetCellValue(balanceSheet, cellRef(4, row), home[id]-away[id])
	}

	// Highlight managers outside the allowed home/away imbalance.
	lastRow := len(cfg.Participants) + 1
	redFill, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
	})
	f.SetConditionalFormat(balanceSheet, fmt.Sprintf("D2:D%d", lastRow), []excelize.ConditionalFormatOptions{
		{
			Type:     "formula",
			Criteria: fmt.Sprintf("ABS(D2)>%d", cfg.Rules.MaxHomeAwayImbalance),
			Format:   &redFill,
		},
	})

	f.SetColWidth(balanceSheet, "A", "A", 28)
	f.SetColWidth(balanceSheet, "B", "D", 10)
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		if err := f.SetCellValue(sheet, cellRef(i+1, 1), h); err != nil {
			return err
		}
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if headerStyle != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), headerStyle)
	}
	return nil
}

// managerSheetNames assigns each participant a distinct sheet name, keyed by
// id. Excel compares sheet names case-insensitively, so a name that clashes
// with the Draw or Balance sheet, or with an earlier manager, gets a " (n)"
// suffix.
func managerSheetNames(cfg *config.Config) map[string]string {
	used := map[string]bool{
		strings.ToLower(drawSheet):    true,
		strings.ToLower(balanceSheet): true,
	}
	names := make(map[string]string, len(cfg.Participants))
	for _, p := range cfg.Participants {
		base := sheetName(p.DisplayName())
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			name = truncate(base, maxSheetName-len(suffix)) + suffix
		}
		used[strings.ToLower(name)] = true
		names[p.ID] = name
	}
	return names
}

const maxSheetName = 31

// sheetName makes a manager name usable as a sheet name: Excel forbids
// some characters and caps names at 31 characters.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, name)
	return truncate(name, maxSheetName)
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

func cellRef(col, row int) string {
	ref, _ := excelize.CoordinatesToCellName(col, row)
	return ref
}
