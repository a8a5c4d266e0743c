// Package report aggregates a user's transactions into totals and groupings.
package report

import (
	"errors"
	"sort"

	"github.com/farukx11/server-10/internal/models"

	"github.com/shopspring/decimal"
)

// Grouping keys accepted by Build.
const (
	GroupByCategory = "category"
	GroupByMonth    = "month"
)

// MonthLayout formats the key of a month group.
const MonthLayout = "2006-01"

// ErrUnknownGrouping is returned by Build for an unsupported groupBy value.
var ErrUnknownGrouping = errors.New(`groupBy must be "category" or "month"`)

// Summary is the income, expense and balance of a set of transactions.
type Summary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// Group is the summary of the transactions sharing one key.
type Group struct {
	Key     string  `json:"key"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
}

// Report combines the overall summary with the requested groupings.
// A grouping that was not requested is nil.
type Report struct {
	Overview   Summary `json:"overview"`
	ByCategory []Group `json:"byCategory"`
	ByMonth    []Group `json:"byMonth"`
}

type tally struct {
	income  decimal.Decimal
	expense decimal.Decimal
	count   int
}

func (t *tally) add(tx models.Transaction) {
	amount := decimal.NewFromFloat(tx.Amount)
	switch tx.Type {
	case models.TypeIncome:
		t.income = t.income.Add(amount)
	case models.TypeExpense:
		t.expense = t.expense.Add(amount)
	}
	t.count++
}

func (t *tally) summary() Summary {
	return Summary{
		Income:  t.income.InexactFloat64(),
		Expense: t.expense.InexactFloat64(),
		Balance: t.income.Sub(t.expense).InexactFloat64(),
	}
}

func (t *tally) group(key string) Group {
	s := t.summary()
	return Group{
		Key:     key,
		Income:  s.Income,
		Expense: s.Expense,
		Balance: s.Balance,
		Total:   t.income.Add(t.expense).InexactFloat64(),
		Count:   t.count,
	}
}

// Overview sums income and expense. An empty slice yields all zeros.
func Overview(txs []models.Transaction) Summary {
	var t tally
	for _, tx := range txs {
		t.add(tx)
	}
	return t.summary()
}

// ByCategory groups transactions by category, sorted by category name.
func ByCategory(txs []models.Transaction) []Group {
	return groupBy(txs, func(tx models.Transaction) string { return tx.Category })
}

// ByMonth groups transactions by the UTC calendar month of their date,
// oldest month first.
func ByMonth(txs []models.Transaction) []Group {
	return groupBy(txs, func(tx models.Transaction) string { return tx.Date.UTC().Format(MonthLayout) })
}

func groupBy(txs []models.Transaction, key func(models.Transaction) string) []Group {
	tallies := make(map[string]*tally)
	for _, tx := range txs {
		k := key(tx)
		t, ok := tallies[k]
		if !ok {
			t = &tally{}
			tallies[k] = t
		}
		t.add(tx)
	}

	groups := make([]Group, 0, len(tallies))
	for k, t := range tallies {
		groups = append(groups, t.group(k))
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// Build assembles a report. An empty grouping includes both groupings.
func Build(txs []models.Transaction, grouping string) (Report, error) {
	r := Report{Overview: Overview(txs)}
	switch grouping {
	case "":
		r.ByCategory = ByCategory(txs)
		r.ByMonth = ByMonth(txs)
	case GroupByCategory:
		r.ByCategory = ByCategory(txs)
	case GroupByMonth:
		r.ByMonth = ByMonth(txs)
	default:
		return Report{}, ErrUnknownGrouping
	}
	return r, nil
}
