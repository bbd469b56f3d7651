package insight

import (
	"time"

	"finpulse/internal/database"
)

// Metrics summarizes a user's last 30 days of transactions, bucketed by
// category name.
type Metrics struct {
	Username        string
	IncomeCents     int64
	ExpenseCents    int64
	SavingsCents    int64
	InvestmentCents int64
	SavingsRate     float64
	NetIncomeCents  int64
}

// CollectMetrics aggregates the totals feeding the insight prompt.
// Buckets are matched by category name substring, the same heuristic the
// summary categories use.
func CollectMetrics(db database.Service, userId int, username string) (Metrics, error) {
	since := time.Now().AddDate(0, 0, -30)

	m := Metrics{Username: username}

	var err error
	if m.IncomeCents, err = db.SumByCategoryNameSince(userId, "income", since); err != nil {
		return m, err
	}
	if m.ExpenseCents, err = db.SumByCategoryNameSince(userId, "expense", since); err != nil {
		return m, err
	}
	if m.SavingsCents, err = db.SumByCategoryNameSince(userId, "savings", since); err != nil {
		return m, err
	}
	if m.InvestmentCents, err = db.SumByCategoryNameSince(userId, "investment", since); err != nil {
		return m, err
	}

	if m.IncomeCents > 0 {
		m.SavingsRate = float64(m.SavingsCents) / float64(m.IncomeCents) * 100
	}
	m.NetIncomeCents = m.IncomeCents - m.ExpenseCents

	return m, nil
}
