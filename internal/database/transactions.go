package database

import (
	"database/sql"
	"fmt"
	"time"

	"finpulse/internal/model"
)

func (s *service) CreateTransaction(data model.NewTransactionData) (int, error) {
	query := `INSERT INTO fp_transactions (user_id, category_id, amount_cents, description)
		VALUES ($1, $2, $3, $4) RETURNING id`

	var id int
	err := s.db.QueryRow(query, data.UserId, data.CategoryId, data.AmountCents, data.Description).Scan(&id)

	return id, err
}

func (s *service) GetTransaction(id int) (model.TransactionEntity, error) {
	query := `SELECT id, user_id, COALESCE(category_id, 0), amount_cents, description, date
		FROM fp_transactions WHERE id = $1`

	var t model.TransactionEntity
	err := s.db.QueryRow(query, id).Scan(
		&t.Id, &t.UserId, &t.CategoryId, &t.AmountCents, &t.Description, &t.Date,
	)

	return t, err
}

func (s *service) GetTransactions(filter model.TransactionFilter) ([]model.TransactionEntity, error) {
	query := `SELECT id, user_id, COALESCE(category_id, 0), amount_cents, description, date
		FROM fp_transactions WHERE user_id = $1`
	args := []any{filter.UserId}

	if !filter.StartDate.IsZero() {
		args = append(args, filter.StartDate)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if !filter.EndDate.IsZero() {
		args = append(args, filter.EndDate)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	if filter.CategoryId != 0 {
		args = append(args, filter.CategoryId)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]model.TransactionEntity, 0)
	for rows.Next() {
		var t model.TransactionEntity
		err = rows.Scan(&t.Id, &t.UserId, &t.CategoryId, &t.AmountCents, &t.Description, &t.Date)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	return transactions, rows.Err()
}

func (s *service) UpdateTransaction(data model.UpdateTransactionData) error {
	query := `UPDATE fp_transactions SET category_id = $1, amount_cents = $2, description = $3
		WHERE id = $4 AND user_id = $5`

	res, err := s.db.Exec(query, data.CategoryId, data.AmountCents, data.Description, data.Id, data.UserId)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected != 1 {
		return fmt.Errorf("expected 1 transaction to be updated but was %d", rowsAffected)
	}

	return nil
}

func (s *service) DeleteTransaction(id, userId int) error {
	query := "DELETE FROM fp_transactions WHERE id = $1 AND user_id = $2"

	res, err := s.db.Exec(query, id, userId)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected != 1 {
		return fmt.Errorf("expected 1 transaction to be deleted but was %d", rowsAffected)
	}

	return nil
}

// GetTransactionSummary aggregates all-time income (positive amounts),
// expenses (negative amounts, reported positive) and the five categories
// with the highest spending.
func (s *service) GetTransactionSummary(userId int) (model.SummaryEntity, error) {
	var summary model.SummaryEntity

	query := `SELECT
		COALESCE(SUM(amount_cents) FILTER (WHERE amount_cents > 0), 0),
		COALESCE(-SUM(amount_cents) FILTER (WHERE amount_cents < 0), 0)
		FROM fp_transactions WHERE user_id = $1`

	err := s.db.QueryRow(query, userId).Scan(&summary.IncomeCents, &summary.ExpenseCents)
	if err != nil {
		return summary, err
	}

	topQuery := `SELECT COALESCE(c.name, 'Uncategorized'), -SUM(t.amount_cents) AS spent
		FROM fp_transactions t
		LEFT JOIN fp_categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.amount_cents < 0
		GROUP BY c.name
		ORDER BY spent DESC
		LIMIT 5`

	rows, err := s.db.Query(topQuery, userId)
	if err != nil {
		return summary, err
	}
	defer rows.Close()

	for rows.Next() {
		var spend model.CategorySpendEntity
		if err = rows.Scan(&spend.Category, &spend.TotalCents); err != nil {
			return summary, err
		}
		summary.TopCategories = append(summary.TopCategories, spend)
	}

	return summary, rows.Err()
}

// GetMonthExpenditure sums the spending (negative amounts, reported
// positive) within the calendar month containing the given date.
func (s *service) GetMonthExpenditure(userId int, month time.Time) (int64, error) {
	query := `SELECT COALESCE(-SUM(amount_cents), 0) FROM fp_transactions
		WHERE user_id = $1 AND amount_cents < 0
		AND date >= date_trunc('month', $2::date)
		AND date < date_trunc('month', $2::date) + interval '1 month'`

	var total int64
	err := s.db.QueryRow(query, userId, month).Scan(&total)

	return total, err
}

// SumByCategoryNameSince totals transactions since the given date whose
// category name contains namePart, case insensitively.
func (s *service) SumByCategoryNameSince(userId int, namePart string, since time.Time) (int64, error) {
	query := `SELECT COALESCE(SUM(t.amount_cents), 0)
		FROM fp_transactions t
		JOIN fp_categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.date >= $2 AND c.name ILIKE '%' || $3 || '%'`

	var total int64
	err := s.db.QueryRow(query, userId, since, namePart).Scan(&total)
	if err == sql.ErrNoRows {
		return 0, nil
	}

	return total, err
}
