package database

import (
	"log"
	"time"

	"finpulse/internal/model"
)

func (s *service) CreateBudget(data model.NewBudgetData) (int, error) {
	query := `INSERT INTO fp_monthly_budgets (user_id, month, budget_cents)
		VALUES ($1, date_trunc('month', $2::date), $3) RETURNING id`

	var id int
	err := s.db.QueryRow(query, data.UserId, data.Month, data.BudgetCents).Scan(&id)

	return id, err
}

func (s *service) GetBudget(userId int, month time.Time) (model.BudgetEntity, error) {
	query := `SELECT id, user_id, month, budget_cents, created_at FROM fp_monthly_budgets
		WHERE user_id = $1 AND month = date_trunc('month', $2::date)`

	var budget model.BudgetEntity
	err := s.db.QueryRow(query, userId, month).Scan(
		&budget.Id, &budget.UserId, &budget.Month, &budget.BudgetCents, &budget.CreatedAt,
	)

	return budget, err
}

func (s *service) BudgetExists(userId int, month time.Time) bool {
	query := `SELECT EXISTS(SELECT 1 FROM fp_monthly_budgets
		WHERE user_id = $1 AND month = date_trunc('month', $2::date))`

	var exists bool
	if err := s.db.QueryRow(query, userId, month).Scan(&exists); err != nil {
		log.Printf("Error checking budget existence: %v\n", err)
		return false
	}

	return exists
}
