package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/newthinker/fundrep/internal/core"
	"github.com/shopspring/decimal"
)

const yenSuffix = "円"

// DefaultDividendYears are the calendar years shown in the dividend table
// when none are configured
var DefaultDividendYears = []int{2020, 2021}

// ParseYen parses a display amount such as "1,200.00円" into whole yen,
// truncating any fraction
func ParseYen(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, yenSuffix)
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d.IntPart(), nil
}

// FormatYen formats whole yen for display
func FormatYen(v int64) string {
	return strconv.FormatInt(v, 10) + yenSuffix
}

// PivotDividends lays dividends out as a year x month grid. Only the given
// years appear as rows, in the given order. Months without a dividend in
// any of those years are dropped. Several dividends in the same month keep
// the largest.
func PivotDividends(dividends []core.Dividend, years []int) (*Table, error) {
	wanted := make(map[int]bool, len(years))
	for _, y := range years {
		wanted[y] = true
	}

	cells := make(map[int]map[int]int64) // month -> year -> amount
	for _, d := range dividends {
		year, month := d.Period.Year(), int(d.Period.Month())
		if !wanted[year] {
			continue
		}

		amount, err := ParseYen(d.Amount)
		if err != nil {
			return nil, err
		}

		byYear, ok := cells[month]
		if !ok {
			byYear = make(map[int]int64)
			cells[month] = byYear
		}
		if cur, ok := byYear[year]; !ok || amount > cur {
			byYear[year] = amount
		}
	}

	months := make([]int, 0, len(cells))
	for m := range cells {
		months = append(months, m)
	}
	sort.Ints(months)

	header := make([]string, 0, len(months)+1)
	header = append(header, "")
	for _, m := range months {
		header = append(header, fmt.Sprintf("%d月", m))
	}

	rows := make([][]string, 0, len(years))
	for _, y := range years {
		row := make([]string, 0, len(months)+1)
		row = append(row, fmt.Sprintf("%d年", y))
		for _, m := range months {
			if v, ok := cells[m][y]; ok {
				row = append(row, FormatYen(v))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}

	return &Table{
		Classes: []string{"dividend", "table"},
		Header:  header,
		Rows:    rows,
		Index:   true,
	}, nil
}
