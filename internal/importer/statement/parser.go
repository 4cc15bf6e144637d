// Package statement reads Turkish bank statement CSV exports.
package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	enc "github.com/MrJamesThe3rd/praxis/internal/encoding"
	"github.com/MrJamesThe3rd/praxis/internal/finance"
)

// ErrUnknownFormat is returned when no row of the input looks like a known header.
var ErrUnknownFormat = errors.New("no matching statement format found: expected Tarih, Açıklama and Tutar or Borç/Alacak columns")

var (
	separators  = []rune{';', ','}
	dateLayouts = []string{"02.01.2006", "02/01/2006", time.DateOnly}
)

// Parser reads bank CSV exports and produces bank-account transaction params.
// The separator and the column layout are detected from the header row.
type Parser struct {
	loc *time.Location
}

// NewParser returns a parser reading statement dates as calendar days in loc.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}

	return &Parser{loc: loc}
}

func (p *Parser) Parse(r io.Reader) ([]finance.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	for _, sep := range separators {
		rows, err := readRows(data, sep)
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		return p.parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
	}

	return nil, ErrUnknownFormat
}

func readRows(data []byte, sep rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile and
// returns the profile, its column map and the header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	lower := cases.Lower(language.Turkish)

	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := lower.String(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts transactions from the rows below the header. Rows
// without a date or a non-zero amount (balances, page footers) are skipped.
func (p *Parser) parseRows(prof *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]finance.CreateParams, error) {
	dateIdx := cols[prof.DateCol]
	descIdx := cols[prof.DescCol]

	var txs []finance.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 1 // 1-based

		date, ok := p.parseDate(cellValue(row, dateIdx))
		if !ok {
			continue
		}

		amount, dir, ok := parseRowAmount(prof, cols, row)
		if !ok {
			continue
		}

		desc := strings.Join(strings.Fields(cellValue(row, descIdx)), " ")
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		txs = append(txs, finance.CreateParams{
			Date:           date,
			Description:    desc,
			RawDescription: desc,
			Amount:         amount,
			Direction:      dir,
			Account:        finance.AccountBank,
			Status:         finance.StatusPaid,
		})
	}

	return txs, nil
}

// parseDate accepts the layouts Turkish banks export, with or without a
// trailing time of day.
func (p *Parser) parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	s, _, _ = strings.Cut(s, " ")

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseRowAmount(p *Profile, cols colIndex, row []string) (int64, finance.Direction, bool) {
	switch p.AmountMode {
	case amountSingle:
		return parseSingleAmount(cellValue(row, cols[p.AmountCol]))
	case amountSplit:
		return parseSplitAmount(cellValue(row, cols[p.DebitCol]), cellValue(row, cols[p.CreditCol]))
	}

	return 0, "", false
}

func parseSingleAmount(s string) (int64, finance.Direction, bool) {
	if s == "" {
		return 0, "", false
	}

	kurus, err := ParseAmount(s)
	if err != nil || kurus == 0 {
		return 0, "", false
	}

	if kurus < 0 {
		return -kurus, finance.DirectionExpense, true
	}

	return kurus, finance.DirectionIncome, true
}

func parseSplitAmount(debit, credit string) (int64, finance.Direction, bool) {
	if debit != "" {
		if kurus, err := ParseAmount(debit); err == nil && kurus != 0 {
			return abs(kurus), finance.DirectionExpense, true
		}
	}

	if credit != "" {
		if kurus, err := ParseAmount(credit); err == nil && kurus != 0 {
			return abs(kurus), finance.DirectionIncome, true
		}
	}

	return 0, "", false
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
