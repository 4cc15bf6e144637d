// Package report renders ledger exports: a spreadsheet-friendly CSV and a
// plain-text period summary.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/praxis/internal/finance"
	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
)

// dateLayout is the day format used in every export.
const dateLayout = "02.01.2006"

var csvHeader = []string{"Tarih", "Açıklama", "Kişi", "Kategori", "Tür", "Hesap", "Durum", "Tutar"}

// Source is the slice of the finance service reports read from.
type Source interface {
	List(ctx context.Context, filter finance.ListFilter) ([]*finance.Transaction, error)
	BalanceSheet(ctx context.Context, filter finance.ListFilter) (*finance.BalanceSheet, error)
}

type Service struct {
	finance Source
}

func NewService(src Source) *Service {
	return &Service{finance: src}
}

// CSV writes the filtered transactions as semicolon separated UTF-8 with a BOM
// so spreadsheet programs pick up the Turkish characters. Amounts are signed,
// which lets the statement importer read the file back. It returns the number
// of rows written.
func (s *Service) CSV(ctx context.Context, w io.Writer, filter finance.ListFilter) (int, error) {
	txs, err := s.finance.List(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("listing transactions: %w", err)
	}

	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return 0, fmt.Errorf("writing bom: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.Date.Format(dateLayout),
			tx.Description,
			tx.Person,
			tx.Category,
			DirectionLabel(tx.Direction),
			AccountLabel(tx.Account),
			StatusLabel(tx.Status),
			plainAmount(tx.Signed()),
		}

		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}

	return len(txs), nil
}

// Summary renders the period's totals, category shares and movements as text
// fit for an e-mail body. Cancelled transactions are left out.
func (s *Service) Summary(ctx context.Context, filter finance.ListFilter) (string, error) {
	sheet, err := s.finance.BalanceSheet(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("building balance sheet: %w", err)
	}

	txs, err := s.finance.List(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("listing transactions: %w", err)
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "Dönem: %s\n", period(filter))
	fmt.Fprintf(&sb, "Gelir: %s\n", Lira(sheet.Income))
	fmt.Fprintf(&sb, "Gider: %s\n", Lira(sheet.Expense))
	fmt.Fprintf(&sb, "Net: %s\n", Lira(sheet.Net))

	writeBuckets(&sb, "Gelir kategorileri", sheet.IncomeBuckets)
	writeBuckets(&sb, "Gider kategorileri", sheet.ExpenseBuckets)

	sb.WriteString("\nHareketler\n")

	n := 0

	for _, tx := range txs {
		if tx.Status == finance.StatusCancelled {
			continue
		}

		sign := "-"
		if tx.Direction == finance.DirectionIncome {
			sign = "+"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s%s | %s\n",
			tx.Date.Format(dateLayout), tx.Description, sign, Lira(tx.Amount), AccountLabel(tx.Account))

		n++
	}

	if n == 0 {
		sb.WriteString("Kayıt yok\n")
	}

	return sb.String(), nil
}

func writeBuckets(sb *strings.Builder, title string, buckets []pipeline.Bucket) {
	if len(buckets) == 0 {
		return
	}

	fmt.Fprintf(sb, "\n%s\n", title)

	for _, b := range buckets {
		fmt.Fprintf(sb, "* %s | %s | %%%s\n", b.Category, Lira(b.Total), strings.Replace(fmt.Sprintf("%.1f", b.Percent), ".", ",", 1))
	}
}

func period(filter finance.ListFilter) string {
	if filter.Dates == nil || (filter.Dates.From == nil && filter.Dates.To == nil) {
		return "Tüm kayıtlar"
	}

	return day(filter.Dates.From) + " - " + day(filter.Dates.To)
}

func day(t *time.Time) string {
	if t == nil {
		return "…"
	}

	return t.Format(dateLayout)
}

// DirectionLabel, AccountLabel and StatusLabel give the Turkish display names.
func DirectionLabel(d finance.Direction) string {
	if d == finance.DirectionIncome {
		return "Gelir"
	}

	return "Gider"
}

func AccountLabel(a finance.Account) string {
	if a == finance.AccountCash {
		return "Nakit"
	}

	return "Banka"
}

func StatusLabel(s finance.Status) string {
	switch s {
	case finance.StatusPaid:
		return "Ödendi"
	case finance.StatusPending:
		return "Bekliyor"
	case finance.StatusCancelled:
		return "İptal"
	}

	return ""
}
