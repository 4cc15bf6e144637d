package finance

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/praxis/internal/finance"
	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
)

type transactionResponse struct {
	ID             uuid.UUID         `json:"id"`
	Date           string            `json:"date"`
	Description    string            `json:"description"`
	Person         string            `json:"person,omitempty"`
	Category       string            `json:"category"`
	Amount         int64             `json:"amount"`
	Direction      finance.Direction `json:"direction"`
	Account        finance.Account   `json:"account"`
	Status         finance.Status    `json:"status,omitempty"`
	RawDescription string            `json:"raw_description,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      *time.Time        `json:"updated_at,omitempty"`
}

func toResponse(tx *finance.Transaction) transactionResponse {
	return transactionResponse{
		ID:             tx.ID,
		Date:           tx.Date.Format(time.DateOnly),
		Description:    tx.Description,
		Person:         tx.Person,
		Category:       tx.Category,
		Amount:         tx.Amount,
		Direction:      tx.Direction,
		Account:        tx.Account,
		Status:         tx.Status,
		RawDescription: tx.RawDescription,
		CreatedAt:      tx.CreatedAt,
		UpdatedAt:      tx.UpdatedAt,
	}
}

func toResponseList(txs []*finance.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

type bucketResponse struct {
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Total    int64   `json:"total"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

type sliceResponse struct {
	bucketResponse
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
	Path       string  `json:"path"`
}

func toBucket(b pipeline.Bucket) bucketResponse {
	return bucketResponse{Category: b.Category, Color: b.Color, Total: b.Total, Count: b.Count, Percent: b.Percent}
}

func toBuckets(bs []pipeline.Bucket) []bucketResponse {
	resp := make([]bucketResponse, len(bs))
	for i, b := range bs {
		resp[i] = toBucket(b)
	}

	return resp
}

func toSlices(ss []pipeline.Slice) []sliceResponse {
	resp := make([]sliceResponse, len(ss))
	for i, s := range ss {
		resp[i] = sliceResponse{
			bucketResponse: toBucket(s.Bucket),
			StartAngle:     s.StartAngle,
			EndAngle:       s.EndAngle,
			Path:           s.Path,
		}
	}

	return resp
}

type breakdownResponse struct {
	Direction finance.Direction `json:"direction"`
	Total     int64             `json:"total"`
	Count     int               `json:"count"`
	Buckets   []bucketResponse  `json:"buckets"`
	Slices    []sliceResponse   `json:"slices"`
}

type balanceResponse struct {
	Income         int64            `json:"income"`
	Expense        int64            `json:"expense"`
	Net            int64            `json:"net"`
	IncomeBuckets  []bucketResponse `json:"income_buckets"`
	IncomeSlices   []sliceResponse  `json:"income_slices"`
	ExpenseBuckets []bucketResponse `json:"expense_buckets"`
	ExpenseSlices  []sliceResponse  `json:"expense_slices"`
}

type ledgerEntryResponse struct {
	transactionResponse
	Balance int64 `json:"balance"`
}

type ledgerResponse struct {
	Account finance.Account       `json:"account,omitempty"`
	Opening int64                 `json:"opening"`
	In      int64                 `json:"in"`
	Out     int64                 `json:"out"`
	Closing int64                 `json:"closing"`
	Entries []ledgerEntryResponse `json:"entries"`
}
