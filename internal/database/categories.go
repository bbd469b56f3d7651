package database

import (
	"fmt"

	"finpulse/internal/model"
)

func (s *service) CreateCategory(data model.NewCategoryData) (int, error) {
	query := "INSERT INTO fp_categories (user_id, name) VALUES ($1, $2) RETURNING id"

	var id int
	err := s.db.QueryRow(query, data.UserId, data.Name).Scan(&id)

	return id, err
}

func (s *service) GetCategories(userId int) ([]model.CategoryEntity, error) {
	query := "SELECT id, user_id, name FROM fp_categories WHERE user_id = $1 ORDER BY name"

	rows, err := s.db.Query(query, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]model.CategoryEntity, 0)
	for rows.Next() {
		var cat model.CategoryEntity
		if err = rows.Scan(&cat.Id, &cat.UserId, &cat.Name); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}

	return categories, rows.Err()
}

func (s *service) GetCategory(id int) (model.CategoryEntity, error) {
	query := "SELECT id, user_id, name FROM fp_categories WHERE id = $1"

	var cat model.CategoryEntity
	err := s.db.QueryRow(query, id).Scan(&cat.Id, &cat.UserId, &cat.Name)

	return cat, err
}

func (s *service) DeleteCategory(id, userId int) error {
	query := "DELETE FROM fp_categories WHERE id = $1 AND user_id = $2"

	res, err := s.db.Exec(query, id, userId)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected != 1 {
		return fmt.Errorf("expected 1 category to be deleted but was %d", rowsAffected)
	}

	return nil
}
