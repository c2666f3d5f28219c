// Package calculator computes monthly earnings aggregations.
// All functions are pure: they never touch storage and never round,
// since rounding to two decimals is a presentation concern.
package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"praktyka/internal/models"
)

// UnknownEmployerName labels transactions whose employer reference
// cannot be resolved against the provided employer set.
const UnknownEmployerName = "Unknown"

// EmployerSummary is the aggregation bucket for one employer.
type EmployerSummary struct {
	EmployerID       string          `json:"employerId"`
	EmployerName     string          `json:"employerName"`
	Earnings         decimal.Decimal `json:"earnings"`
	Amount           decimal.Decimal `json:"amount"`
	TransactionCount int             `json:"transactionCount"`
}

// MonthlySummary aggregates a transaction set, typically pre-filtered
// to one calendar month.
type MonthlySummary struct {
	TotalAmount      decimal.Decimal   `json:"totalAmount"`
	TotalEarnings    decimal.Decimal   `json:"totalEarnings"`
	TransactionCount int               `json:"transactionCount"`
	ByEmployer       []EmployerSummary `json:"byEmployer"`
}

// Summarize totals a transaction set and groups it by employer.
//
// Every employer in employers appears exactly once in ByEmployer, in
// input order, zero-initialized: an employer without transactions
// still shows up with zero values. Transactions referencing an
// employer outside the set accumulate into a trailing "Unknown" bucket,
// which is present only when such transactions exist. For a
// single-employer view, pass just that employer.
func Summarize(transactions []models.Transaction, employers []models.Employer) MonthlySummary {
	summary := MonthlySummary{
		TotalAmount:   decimal.Zero,
		TotalEarnings: decimal.Zero,
		ByEmployer:    make([]EmployerSummary, 0, len(employers)),
	}

	index := make(map[string]int, len(employers))
	for _, e := range employers {
		index[e.ID] = len(summary.ByEmployer)
		summary.ByEmployer = append(summary.ByEmployer, EmployerSummary{
			EmployerID:   e.ID,
			EmployerName: e.Name,
			Earnings:     decimal.Zero,
			Amount:       decimal.Zero,
		})
	}

	unknown := EmployerSummary{
		EmployerName: UnknownEmployerName,
		Earnings:     decimal.Zero,
		Amount:       decimal.Zero,
	}

	for i := range transactions {
		tx := &transactions[i]
		earnings := tx.Earnings()

		summary.TotalAmount = summary.TotalAmount.Add(tx.Amount)
		summary.TotalEarnings = summary.TotalEarnings.Add(earnings)
		summary.TransactionCount++

		bucket := &unknown
		if pos, ok := index[tx.EmployerID]; ok {
			bucket = &summary.ByEmployer[pos]
		}
		bucket.Amount = bucket.Amount.Add(tx.Amount)
		bucket.Earnings = bucket.Earnings.Add(earnings)
		bucket.TransactionCount++
	}

	if unknown.TransactionCount > 0 {
		summary.ByEmployer = append(summary.ByEmployer, unknown)
	}

	return summary
}

// MonthRange returns the first and last calendar day of the given
// month, both inclusive. The last day is day zero of the following
// month, so leap years fall out of the calendar arithmetic.
func MonthRange(year, month int) (first, last models.Date) {
	first = models.NewDate(year, month, 1)
	last = models.Date{Time: time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)}
	return first, last
}
