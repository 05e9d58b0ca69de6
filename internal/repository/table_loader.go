package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"MLChartist/internal/domain/models"
	"MLChartist/pkg/util"
)

// CellRecord is one (date, symbol, value) cell of a long-format parquet table.
type CellRecord struct {
	Date   string  `parquet:"date"`
	Symbol string  `parquet:"symbol"`
	Value  float64 `parquet:"value"`
}

// rawTable is a wide table in file row order.
type rawTable struct {
	dates   []time.Time
	symbols []string
	values  [][]float64
}

// readTable loads a wide table from CSV or a long table from parquet,
// picking the format by extension.
func readTable(path string) (*rawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return readParquetTable(path)
	default:
		return readCSVTable(path)
	}
}

func readCSVTable(path string) (*rawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%s: need a date column and at least one symbol column", path)
	}
	symbols := make([]string, len(header)-1)
	for j, h := range header[1:] {
		symbols[j] = strings.TrimSpace(h)
	}

	t := &rawTable{symbols: symbols}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		dt, ok := util.ParseDate(rec[0])
		if !ok {
			return nil, fmt.Errorf("%s line %d: bad date %q", path, line, rec[0])
		}
		row := make([]float64, len(symbols))
		for j := range symbols {
			v, err := util.ParseFloatNA(rec[j+1])
			if err != nil {
				return nil, fmt.Errorf("%s line %d column %s: %w", path, line, symbols[j], err)
			}
			row[j] = v
		}
		t.dates = append(t.dates, dt)
		t.values = append(t.values, row)
	}
	return t, nil
}

func readParquetTable(path string) (*rawTable, error) {
	cells, err := parquet.ReadFile[CellRecord](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return pivot(cells)
}

// pivot turns long cells into a wide table. Dates and symbols keep first-seen
// order; absent cells are NaN.
func pivot(cells []CellRecord) (*rawTable, error) {
	t := &rawTable{}
	dateIdx := map[string]int{}
	symIdx := map[string]int{}
	type pos struct{ i, j int }
	set := make(map[pos]float64, len(cells))

	for _, c := range cells {
		dt, ok := util.ParseDate(c.Date)
		if !ok {
			return nil, fmt.Errorf("bad date %q for %s", c.Date, c.Symbol)
		}
		key := models.FormatDate(dt)
		i, ok := dateIdx[key]
		if !ok {
			i = len(t.dates)
			dateIdx[key] = i
			t.dates = append(t.dates, dt)
		}
		sym := strings.TrimSpace(c.Symbol)
		j, ok := symIdx[sym]
		if !ok {
			j = len(t.symbols)
			symIdx[sym] = j
			t.symbols = append(t.symbols, sym)
		}
		set[pos{i, j}] = c.Value
	}

	t.values = make([][]float64, len(t.dates))
	for i := range t.values {
		row := make([]float64, len(t.symbols))
		for j := range row {
			if v, ok := set[pos{i, j}]; ok {
				row[j] = v
			} else {
				row[j] = math.NaN()
			}
		}
		t.values[i] = row
	}
	return t, nil
}

// WriteParquetTable writes a wide table as long-format parquet cells. NaN
// cells are skipped.
func WriteParquetTable(path string, dates []time.Time, symbols []string, values [][]float64) error {
	cells := make([]CellRecord, 0, len(dates)*len(symbols))
	for i, dt := range dates {
		for j, sym := range symbols {
			if models.Missing(values[i][j]) {
				continue
			}
			cells = append(cells, CellRecord{Date: models.FormatDate(dt), Symbol: sym, Value: values[i][j]})
		}
	}
	return parquet.WriteFile(path, cells)
}

// LoadReturns reads the returns history, sorted ascending by date. Duplicate
// dates are rejected.
func LoadReturns(path string) (*models.ReturnsTable, error) {
	raw, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("returns: %w: %v", models.ErrDataLoad, err)
	}
	order := make([]int, len(raw.dates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return raw.dates[order[a]].Before(raw.dates[order[b]]) })

	dates := make([]time.Time, len(order))
	values := make([][]float64, len(order))
	for k, i := range order {
		dates[k] = raw.dates[i]
		values[k] = raw.values[i]
	}
	tbl, err := models.NewReturnsTable(dates, raw.symbols, values)
	if err != nil {
		return nil, fmt.Errorf("returns %s: %w: %v", path, models.ErrDataLoad, err)
	}
	return tbl, nil
}

// LoadPredictions reads model scores with rebalance dates in file order.
func LoadPredictions(path string) (*models.PredictionsTable, error) {
	raw, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("predictions: %w: %v", models.ErrDataLoad, err)
	}
	return &models.PredictionsTable{
		Dates:   raw.dates,
		Symbols: raw.symbols,
		Scores:  raw.values,
	}, nil
}
