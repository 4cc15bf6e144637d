package statement_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/praxis/internal/finance"
	"github.com/MrJamesThe3rd/praxis/internal/importer/statement"
)

var istanbul = time.FixedZone("TRT", 3*3600)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, istanbul)
}

func TestParser_HesapHareketleri(t *testing.T) {
	csv := `Hesap Hareketleri;
Müşteri Adı;AYŞE YILMAZ
IBAN;TR00 0000 0000 0000 0000 0000 00

İşlem Tarihi;Açıklama;Tutar;Bakiye
15.07.2024 10:23;EFT GELEN  MEHMET DEMİR SEANS;1.500,00;12.345,67
16.07.2024 09:00;KİRA ÖDEMESİ TEMMUZ;-12.500,00;-154,33
;;Toplam;
`

	txs, err := statement.NewParser(istanbul).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, date(2024, 7, 15), txs[0].Date)
	assert.Equal(t, "EFT GELEN MEHMET DEMİR SEANS", txs[0].Description)
	assert.Equal(t, int64(150000), txs[0].Amount)
	assert.Equal(t, finance.DirectionIncome, txs[0].Direction)

	assert.Equal(t, date(2024, 7, 16), txs[1].Date)
	assert.Equal(t, "KİRA ÖDEMESİ TEMMUZ", txs[1].Description)
	assert.Equal(t, int64(1250000), txs[1].Amount)
	assert.Equal(t, finance.DirectionExpense, txs[1].Direction)
}

func TestParser_BorcAlacak(t *testing.T) {
	csv := `Tarih;Açıklama;Borç;Alacak;Bakiye
01/08/2024;POS SATIŞ KIRTASİYE;245,90;;1.000,00
02/08/2024;HAVALE ZEYNEP KAYA;;2.000,00;3.000,00
`

	txs, err := statement.NewParser(istanbul).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, date(2024, 8, 1), txs[0].Date)
	assert.Equal(t, int64(24590), txs[0].Amount)
	assert.Equal(t, finance.DirectionExpense, txs[0].Direction)

	assert.Equal(t, date(2024, 8, 2), txs[1].Date)
	assert.Equal(t, int64(200000), txs[1].Amount)
	assert.Equal(t, finance.DirectionIncome, txs[1].Direction)
}

func TestParser_CommaSeparatedISODates(t *testing.T) {
	csv := `Tarih,Açıklama,Tutar
2024-09-03,Seans ücreti,"1.250,50"
2024-09-04,Süpervizyon,-800
`

	txs, err := statement.NewParser(istanbul).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, date(2024, 9, 3), txs[0].Date)
	assert.Equal(t, int64(125050), txs[0].Amount)
	assert.Equal(t, int64(80000), txs[1].Amount)
	assert.Equal(t, finance.DirectionExpense, txs[1].Direction)
}

func TestParser_Turkish8BitUppercaseHeader(t *testing.T) {
	utf8CSV := "İŞLEM TARİHİ;AÇIKLAMA;TUTAR\n15.07.2024;ŞİŞLİ OTOPARK ÜCRETİ;-45,00\n"

	encoded, err := charmap.ISO8859_9.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	txs, err := statement.NewParser(istanbul).Parse(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, "ŞİŞLİ OTOPARK ÜCRETİ", txs[0].RawDescription)
	assert.Equal(t, int64(4500), txs[0].Amount)
}

func TestParser_DifferentColumnOrder(t *testing.T) {
	csv := `Rapor;Özet
Tutar;Açıklama;Tarih;Kanal
-10,00;TEST_ORDER;30.01.2026;İNTERNET
`

	txs, err := statement.NewParser(istanbul).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, "TEST_ORDER", txs[0].Description)
	assert.Equal(t, int64(1000), txs[0].Amount)
}

func TestParser_AllFieldsPopulated(t *testing.T) {
	csv := "Tarih;Açıklama;Tutar\n30.01.2026;TEST;-10,00\n"

	txs, err := statement.NewParser(istanbul).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, finance.AccountBank, txs[0].Account)
	assert.Equal(t, finance.StatusPaid, txs[0].Status)
	assert.Equal(t, "TEST", txs[0].RawDescription)
	assert.Equal(t, txs[0].Description, txs[0].RawDescription)
	assert.Empty(t, txs[0].Category)
}

func TestParser_Errors(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		_, err := statement.NewParser(istanbul).Parse(strings.NewReader(""))
		assert.ErrorIs(t, err, statement.ErrUnknownFormat)
	})

	t.Run("unknown header", func(t *testing.T) {
		_, err := statement.NewParser(istanbul).Parse(strings.NewReader("Date;Description;Amount\n01.01.2024;X;1,00\n"))
		assert.ErrorIs(t, err, statement.ErrUnknownFormat)
	})

	t.Run("missing description", func(t *testing.T) {
		_, err := statement.NewParser(istanbul).Parse(strings.NewReader("Tarih;Açıklama;Tutar\n30.01.2026;;-10,00\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 2: missing description")
	})
}

func TestParser_HeaderOnlyAndZeroRows(t *testing.T) {
	csv := `Tarih;Açıklama;Tutar
30.01.2026;DEVİR;0,00
Toplam;;-10,00
`

	txs, err := statement.NewParser(istanbul).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Empty(t, txs)
}
