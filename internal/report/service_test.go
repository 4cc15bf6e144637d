package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/praxis/internal/finance"
	"github.com/MrJamesThe3rd/praxis/internal/finance/memstore"
	"github.com/MrJamesThe3rd/praxis/internal/importer/statement"
	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
	"github.com/MrJamesThe3rd/praxis/internal/report"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func seeded(t *testing.T) *finance.Service {
	t.Helper()

	svc := finance.NewService(memstore.New(), finance.WithLocation(time.UTC))

	for _, p := range []finance.CreateParams{
		{Date: date(2024, 7, 1), Description: "Temmuz kirası", Category: "Kira", Amount: 1250000, Direction: finance.DirectionExpense, Account: finance.AccountBank, Status: finance.StatusPaid},
		{Date: date(2024, 7, 15), Description: "Seans", Person: "Ayşe Yılmaz", Category: "Seans Ücreti", Amount: 150000, Direction: finance.DirectionIncome, Account: finance.AccountCash, Status: finance.StatusPaid},
		{Date: date(2024, 7, 20), Description: "Seans iptal", Category: "Seans Ücreti", Amount: 150000, Direction: finance.DirectionIncome, Account: finance.AccountCash, Status: finance.StatusCancelled},
	} {
		_, err := svc.Create(context.Background(), p)
		require.NoError(t, err)
	}

	return svc
}

func july() finance.ListFilter {
	from, to := date(2024, 7, 1), date(2024, 7, 31)
	return finance.ListFilter{Spec: pipeline.Spec{Dates: &pipeline.DateRange{From: &from, To: &to}}}
}

func TestLira(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{in: 0, want: "0,00 ₺"},
		{in: 5, want: "0,05 ₺"},
		{in: 99900, want: "999,00 ₺"},
		{in: 123456, want: "1.234,56 ₺"},
		{in: 123456789, want: "1.234.567,89 ₺"},
		{in: -1100000, want: "-11.000,00 ₺"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, report.Lira(tt.in))
		})
	}
}

func TestService_CSV(t *testing.T) {
	var buf bytes.Buffer

	n, err := report.NewService(seeded(t)).CSV(context.Background(), &buf, july())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	body, found := strings.CutPrefix(buf.String(), "\uFEFF")
	require.True(t, found, "missing byte order mark")

	r := csv.NewReader(strings.NewReader(body))
	r.Comma = ';'

	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Tarih", "Açıklama", "Kişi", "Kategori", "Tür", "Hesap", "Durum", "Tutar"}, rows[0])
	assert.Equal(t, []string{"01.07.2024", "Temmuz kirası", "", "Kira", "Gider", "Banka", "Ödendi", "-12500,00"}, rows[1])
	assert.Equal(t, []string{"15.07.2024", "Seans", "Ayşe Yılmaz", "Seans Ücreti", "Gelir", "Nakit", "Ödendi", "1500,00"}, rows[2])
	assert.Equal(t, "İptal", rows[3][6])
}

func TestService_CSVReadsBackThroughStatementParser(t *testing.T) {
	var buf bytes.Buffer

	_, err := report.NewService(seeded(t)).CSV(context.Background(), &buf, july())
	require.NoError(t, err)

	params, err := statement.NewParser(time.UTC).Parse(&buf)
	require.NoError(t, err)
	require.Len(t, params, 3)

	assert.Equal(t, date(2024, 7, 1), params[0].Date)
	assert.Equal(t, int64(1250000), params[0].Amount)
	assert.Equal(t, finance.DirectionExpense, params[0].Direction)
	assert.Equal(t, int64(150000), params[1].Amount)
	assert.Equal(t, finance.DirectionIncome, params[1].Direction)
}

func TestService_Summary(t *testing.T) {
	got, err := report.NewService(seeded(t)).Summary(context.Background(), july())
	require.NoError(t, err)

	assert.Contains(t, got, "Dönem: 01.07.2024 - 31.07.2024\n")
	assert.Contains(t, got, "Gelir: 1.500,00 ₺\n")
	assert.Contains(t, got, "Gider: 12.500,00 ₺\n")
	assert.Contains(t, got, "Net: -11.000,00 ₺\n")
	assert.Contains(t, got, "* Kira | 12.500,00 ₺ | %100,0\n")
	assert.Contains(t, got, "* 15.07.2024 | Seans | +1.500,00 ₺ | Nakit\n")
	assert.NotContains(t, got, "Seans iptal")
}

func TestService_SummaryEmptyPeriod(t *testing.T) {
	from := date(2025, 1, 1)

	got, err := report.NewService(seeded(t)).Summary(context.Background(), finance.ListFilter{
		Spec: pipeline.Spec{Dates: &pipeline.DateRange{From: &from}},
	})
	require.NoError(t, err)

	assert.Contains(t, got, "Dönem: 01.01.2025 - …\n")
	assert.Contains(t, got, "Net: 0,00 ₺\n")
	assert.Contains(t, got, "Kayıt yok\n")
	assert.NotContains(t, got, "kategorileri")
}

type failingSource struct{}

func (failingSource) List(context.Context, finance.ListFilter) ([]*finance.Transaction, error) {
	return nil, errors.New("connection reset")
}

func (failingSource) BalanceSheet(context.Context, finance.ListFilter) (*finance.BalanceSheet, error) {
	return nil, errors.New("connection reset")
}

func TestService_SourceErrors(t *testing.T) {
	svc := report.NewService(failingSource{})

	var buf bytes.Buffer

	_, err := svc.CSV(context.Background(), &buf, finance.ListFilter{})
	assert.ErrorContains(t, err, "listing transactions")
	assert.Zero(t, buf.Len())

	_, err = svc.Summary(context.Background(), finance.ListFilter{})
	assert.ErrorContains(t, err, "building balance sheet")
}
