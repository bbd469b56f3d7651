package database

import (
	"fmt"

	"finpulse/internal/model"
)

func (s *service) GetSavingsGoal(userId int) (model.SavingsGoalEntity, error) {
	query := `SELECT id, user_id, goal_cents, goal_date, current_cents
		FROM fp_savings_goals WHERE user_id = $1`

	var goal model.SavingsGoalEntity
	err := s.db.QueryRow(query, userId).Scan(
		&goal.Id, &goal.UserId, &goal.GoalCents, &goal.GoalDate, &goal.CurrentCents,
	)

	return goal, err
}

// UpsertSavingsGoal creates the user's savings goal or replaces its target
// amount and date. Accumulated savings are kept.
func (s *service) UpsertSavingsGoal(data model.NewSavingsGoalData) (int, error) {
	query := `INSERT INTO fp_savings_goals (user_id, goal_cents, goal_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET goal_cents = $2, goal_date = $3
		RETURNING id`

	var id int
	err := s.db.QueryRow(query, data.UserId, data.GoalCents, data.GoalDate).Scan(&id)

	return id, err
}

func (s *service) AddSavings(userId int, amountCents int64) (model.SavingsGoalEntity, error) {
	query := `UPDATE fp_savings_goals SET current_cents = current_cents + $1
		WHERE user_id = $2
		RETURNING id, user_id, goal_cents, goal_date, current_cents`

	var goal model.SavingsGoalEntity
	err := s.db.QueryRow(query, amountCents, userId).Scan(
		&goal.Id, &goal.UserId, &goal.GoalCents, &goal.GoalDate, &goal.CurrentCents,
	)
	if err != nil {
		return goal, fmt.Errorf("adding savings for user %d: %w", userId, err)
	}

	return goal, nil
}
