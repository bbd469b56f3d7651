package database

import (
	"finpulse/internal/model"
)

func (s *service) CreateInsight(data model.NewInsightData) (int, error) {
	query := `INSERT INTO fp_insights (user_id, title, content, is_automated)
		VALUES ($1, $2, $3, $4) RETURNING id`

	var id int
	err := s.db.QueryRow(query, data.UserId, data.Title, data.Content, data.IsAutomated).Scan(&id)

	return id, err
}

// GetInsights lists the insights visible to a user, newest first: their
// own plus any automated ones.
func (s *service) GetInsights(userId, offset, limit int) ([]model.InsightEntity, error) {
	query := `SELECT id, user_id, title, content, is_automated, date_posted
		FROM fp_insights WHERE user_id = $1 OR is_automated
		ORDER BY date_posted DESC, id DESC
		OFFSET $2 LIMIT $3`

	rows, err := s.db.Query(query, userId, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	insights := make([]model.InsightEntity, 0)
	for rows.Next() {
		var in model.InsightEntity
		err = rows.Scan(&in.Id, &in.UserId, &in.Title, &in.Content, &in.IsAutomated, &in.DatePosted)
		if err != nil {
			return nil, err
		}
		insights = append(insights, in)
	}

	return insights, rows.Err()
}

func (s *service) CountInsights(userId int) (int, error) {
	query := "SELECT COUNT(*) FROM fp_insights WHERE user_id = $1 OR is_automated"

	var count int
	err := s.db.QueryRow(query, userId).Scan(&count)

	return count, err
}

func (s *service) GetLatestPersonalInsight(userId int) (model.InsightEntity, error) {
	query := `SELECT id, user_id, title, content, is_automated, date_posted
		FROM fp_insights WHERE user_id = $1 AND NOT is_automated
		ORDER BY date_posted DESC, id DESC LIMIT 1`

	var in model.InsightEntity
	err := s.db.QueryRow(query, userId).Scan(
		&in.Id, &in.UserId, &in.Title, &in.Content, &in.IsAutomated, &in.DatePosted,
	)

	return in, err
}
