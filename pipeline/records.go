package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"riskgate/gateway"
)

// Row 一行输入记录，Line为源文件中的行号（从1开始，含表头）
type Row struct {
	Line   int            `json:"line"`
	Record gateway.Record `json:"record"`
}

// ErrNoHeader 输入没有表头行
var ErrNoHeader = errors.New("input has no header row")

// ReadFile 根据扩展名读取CSV或XLSX文件
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported input format %q (want .csv or .xlsx)", ext)
	}
}

// ReadCSV 读取带表头的CSV
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// 空行会被csv.Reader跳过，行号取自FieldPos
	var lines []line
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		n, _ := reader.FieldPos(0)
		lines = append(lines, line{number: n, cells: cells})
	}
	return fromTable(lines)
}

// ReadXLSX 读取第一个工作表
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoHeader
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheetName, err)
	}
	lines := make([]line, len(rows))
	for i, cells := range rows {
		lines[i] = line{number: i + 1, cells: cells}
	}
	return fromTable(lines)
}

type line struct {
	number int
	cells  []string
}

// fromTable 按表头把单元格映射到记录字段。未知列忽略，空单元格视为缺失
func fromTable(table []line) ([]Row, error) {
	if len(table) == 0 {
		return nil, ErrNoHeader
	}

	header := table[0].cells
	columns := make([]string, len(header))
	seen := make(map[string]bool)
	known := make(map[string]bool)
	for _, name := range gateway.FieldNames() {
		known[name] = true
	}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if !known[name] {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
		columns[i] = name
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("%w: none of %s found", ErrNoHeader, strings.Join(gateway.FieldNames(), ", "))
	}

	rows := make([]Row, 0, len(table)-1)
	for _, l := range table[1:] {
		if blank(l.cells) {
			continue
		}
		row := Row{Line: l.number}
		for j, cell := range l.cells {
			if j >= len(columns) || columns[j] == "" || strings.TrimSpace(cell) == "" {
				continue
			}
			if err := row.Record.Set(columns[j], gateway.Text(cell)); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
