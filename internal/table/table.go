// Package table reads and writes the delimited flat files exchanged between
// pipeline stages. Delimiter and decimal separator are per-file settings.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/n0roo/richness-kit/internal/richness"
)

// Format describes a file's separators
type Format struct {
	Delimiter rune
	Decimal   rune
}

// DefaultFormat is comma delimited with a dot decimal separator
var DefaultFormat = Format{Delimiter: ',', Decimal: '.'}

// Table is a header plus raw string rows
type Table struct {
	Header []string
	Rows   [][]string
}

// Read loads a whole file. A missing file yields *richness.MissingInputError.
func Read(path string, f Format) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &richness.MissingInputError{Path: path}
		}
		return nil, fmt.Errorf("파일 열기 실패: %w", err)
	}
	defer file.Close()

	t, err := ReadFrom(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadFrom parses delimited text from r
func ReadFrom(r io.Reader, f Format) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = f.delimiter()
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	// 행 길이 검사는 호출자가 Cell로 처리
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV 파싱 실패: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("헤더가 없는 빈 파일")
	}

	header := records[0]
	// BOM 제거
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	return &Table{Header: header, Rows: records[1:]}, nil
}

// Index returns the position of a header column, or -1
func (t *Table) Index(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}
	return -1
}

// Cell returns row[i] or "" when the row is short
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseFloat parses a number honouring the file's decimal separator.
// Empty cells parse as NaN.
func ParseFloat(s string, decimal rune) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	if decimal != 0 && decimal != '.' {
		s = strings.ReplaceAll(s, string(decimal), ".")
	}
	return strconv.ParseFloat(s, 64)
}

// ParseInt parses an integer id. Integral floats such as "3.0" are accepted.
func ParseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("정수가 아닌 값: %q", s)
	}
	return int(f), nil
}

// FormatFloat renders the shortest string that round-trips to v
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteAtomic writes header and rows to path through a temp file so that a
// failure never leaves a partial file behind.
func WriteAtomic(path string, f Format, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("디렉토리 생성 실패: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("임시 파일 생성 실패: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := csv.NewWriter(tmp)
	w.Comma = f.delimiter()
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("헤더 쓰기 실패: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("행 쓰기 실패: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("파일 닫기 실패: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("파일 교체 실패: %w", err)
	}
	return nil
}

func (f Format) delimiter() rune {
	if f.Delimiter == 0 {
		return ','
	}
	return f.Delimiter
}
