package database

import (
	"fmt"

	"finpulse/internal/model"
)

func (s *service) CreateSubscription(data model.NewSubscriptionData) (int, error) {
	query := `INSERT INTO fp_subscriptions (user_id, name, amount_cents, frequency, payment_method, due_date)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id int
	err := s.db.QueryRow(
		query,
		data.UserId, data.Name, data.AmountCents,
		data.Frequency, data.PaymentMethod, data.DueDate,
	).Scan(&id)

	return id, err
}

func (s *service) GetSubscription(id int) (model.SubscriptionEntity, error) {
	query := `SELECT id, user_id, name, amount_cents, frequency, payment_method, due_date, is_paid
		FROM fp_subscriptions WHERE id = $1`

	var sub model.SubscriptionEntity
	err := s.db.QueryRow(query, id).Scan(
		&sub.Id, &sub.UserId, &sub.Name, &sub.AmountCents,
		&sub.Frequency, &sub.PaymentMethod, &sub.DueDate, &sub.IsPaid,
	)

	return sub, err
}

func (s *service) GetSubscriptions(filter model.SubscriptionFilter) ([]model.SubscriptionEntity, error) {
	query := `SELECT id, user_id, name, amount_cents, frequency, payment_method, due_date, is_paid
		FROM fp_subscriptions WHERE user_id = $1`
	args := []any{filter.UserId}

	if filter.Month != 0 && filter.Year != 0 {
		args = append(args, filter.Month, filter.Year)
		query += fmt.Sprintf(
			" AND EXTRACT(MONTH FROM due_date) = $%d AND EXTRACT(YEAR FROM due_date) = $%d",
			len(args)-1, len(args),
		)
	}
	query += " ORDER BY due_date, id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]model.SubscriptionEntity, 0)
	for rows.Next() {
		var sub model.SubscriptionEntity
		err = rows.Scan(
			&sub.Id, &sub.UserId, &sub.Name, &sub.AmountCents,
			&sub.Frequency, &sub.PaymentMethod, &sub.DueDate, &sub.IsPaid,
		)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

func (s *service) UpdateSubscription(data model.UpdateSubscriptionData) error {
	query := `UPDATE fp_subscriptions
		SET name = $1, amount_cents = $2, frequency = $3, payment_method = $4, due_date = $5
		WHERE id = $6 AND user_id = $7`

	res, err := s.db.Exec(
		query,
		data.Name, data.AmountCents, data.Frequency,
		data.PaymentMethod, data.DueDate, data.Id, data.UserId,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected != 1 {
		return fmt.Errorf("expected 1 subscription to be updated but was %d", rowsAffected)
	}

	return nil
}

func (s *service) DeleteSubscription(id, userId int) error {
	query := "DELETE FROM fp_subscriptions WHERE id = $1 AND user_id = $2"

	res, err := s.db.Exec(query, id, userId)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected != 1 {
		return fmt.Errorf("expected 1 subscription to be deleted but was %d", rowsAffected)
	}

	return nil
}

// ToggleSubscriptionPaid flips the paid flag and returns the new value.
func (s *service) ToggleSubscriptionPaid(id, userId int) (bool, error) {
	query := `UPDATE fp_subscriptions SET is_paid = NOT is_paid
		WHERE id = $1 AND user_id = $2 RETURNING is_paid`

	var isPaid bool
	err := s.db.QueryRow(query, id, userId).Scan(&isPaid)

	return isPaid, err
}
