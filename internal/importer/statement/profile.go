package statement

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Tutar" with value "-10,00").
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns ("Borç"/"Alacak").
	amountSplit
)

// Profile describes the column layout of a bank statement export. Column names
// are compared after Turkish lower-casing.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	AmountMode amountMode
	AmountCol  string // used when AmountMode == amountSingle
	DebitCol   string // used when AmountMode == amountSplit
	CreditCol  string // used when AmountMode == amountSplit
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:       "borç/alacak",
		DateCol:    "tarih",
		DescCol:    "açıklama",
		AmountMode: amountSplit,
		DebitCol:   "borç",
		CreditCol:  "alacak",
	},
	{
		Name:       "hesap hareketleri",
		DateCol:    "işlem tarihi",
		DescCol:    "açıklama",
		AmountMode: amountSingle,
		AmountCol:  "tutar",
	},
	{
		Name:       "tutar",
		DateCol:    "tarih",
		DescCol:    "açıklama",
		AmountMode: amountSingle,
		AmountCol:  "tutar",
	},
}
