/*
ledger.go - Campaign totals and plafond tracking

PURPOSE:
  Aggregates a campaign's operations into the figures the candidate
  dashboard and the accountant review screens show: total receipts, total
  expenses, net position, per-category breakdown, and consumption of the
  legal expense ceiling (plafond).

  Rejected operations are excluded; pending ones count, since the plafond
  is a hard legal bound the mandataire must track before validation
  catches up. A mirrored zero-net pair contributes equally to both sides
  and leaves the net untouched.
*/
package campaign

import (
	"github.com/shopspring/decimal"

	"github.com/quitus/campaign-ledger/compliance"
)

// CategoryTotal is one line of the per-category breakdown.
type CategoryTotal struct {
	Category    compliance.Category
	AccountCode string
	Label       string
	Total       decimal.Decimal
	Count       int
}

// Totals is the aggregate view of a campaign's books.
type Totals struct {
	Receipts decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal

	ByReceiptCategory []CategoryTotal
	ByExpenseCategory []CategoryTotal

	// Plafond tracking. PlafondRatio is Expenses/Plafond; zero when no
	// plafond is set.
	Plafond      decimal.Decimal
	PlafondRatio decimal.Decimal
	OverPlafond  bool

	PendingCount  int
	ApprovedCount int
}

// ComputeTotals folds the operations into campaign totals.
func ComputeTotals(ops []Operation, plafond decimal.Decimal) Totals {
	t := Totals{
		Receipts: decimal.Zero,
		Expenses: decimal.Zero,
		Plafond:  plafond,
	}

	receiptTotals := make(map[compliance.Category]*CategoryTotal)
	expenseTotals := make(map[compliance.Category]*CategoryTotal)

	for _, op := range ops {
		if op.Status == compliance.StatusRejected {
			continue
		}
		switch op.Status {
		case compliance.StatusPending:
			t.PendingCount++
		case compliance.StatusApproved:
			t.ApprovedCount++
		}

		switch op.Kind {
		case compliance.Receipt:
			t.Receipts = t.Receipts.Add(op.Amount)
			accumulate(receiptTotals, op)
		case compliance.Expense:
			t.Expenses = t.Expenses.Add(op.Amount)
			accumulate(expenseTotals, op)
		}
	}

	t.Net = t.Receipts.Sub(t.Expenses)
	t.ByReceiptCategory = orderedTotals(compliance.Receipt, receiptTotals)
	t.ByExpenseCategory = orderedTotals(compliance.Expense, expenseTotals)

	if plafond.IsPositive() {
		t.PlafondRatio = t.Expenses.Div(plafond).Round(4)
		t.OverPlafond = t.Expenses.GreaterThan(plafond)
	}

	return t
}

func accumulate(totals map[compliance.Category]*CategoryTotal, op Operation) {
	ct, ok := totals[op.Category]
	if !ok {
		entry, _ := compliance.Catalog(op.Kind, op.Category)
		ct = &CategoryTotal{
			Category:    op.Category,
			AccountCode: entry.AccountCode,
			Label:       entry.Label,
			Total:       decimal.Zero,
		}
		totals[op.Category] = ct
	}
	ct.Total = ct.Total.Add(op.Amount)
	ct.Count++
}

// orderedTotals returns the breakdown in catalog order so the dashboard
// and the CSV export agree on row ordering.
func orderedTotals(kind compliance.Kind, totals map[compliance.Category]*CategoryTotal) []CategoryTotal {
	var out []CategoryTotal
	for _, entry := range compliance.Categories(kind) {
		if ct, ok := totals[entry.Category]; ok {
			out = append(out, *ct)
		}
	}
	return out
}
