package database

import (
	"fmt"
	"log"

	"finpulse/internal/model"
)

func (s *service) CreateUser(data model.NewUserData) (int, error) {
	query := `INSERT INTO fp_users (username, email, password_hash, first_name, last_name, image_url)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id int
	err := s.db.QueryRow(
		query,
		data.Username, data.Email, data.PasswordHash,
		data.FirstName, data.LastName, data.ImageURL,
	).Scan(&id)

	return id, err
}

func (s *service) GetUserByUsername(username string) (model.UserEntity, error) {
	query := `SELECT id, username, email, password_hash, first_name, last_name, image_url, is_active, created_at
		FROM fp_users WHERE username = $1`

	var user model.UserEntity
	err := s.db.QueryRow(query, username).Scan(
		&user.Id, &user.Username, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.ImageURL, &user.IsActive, &user.CreatedAt,
	)

	return user, err
}

func (s *service) GetUserById(id int) (model.UserEntity, error) {
	query := `SELECT id, username, email, password_hash, first_name, last_name, image_url, is_active, created_at
		FROM fp_users WHERE id = $1`

	var user model.UserEntity
	err := s.db.QueryRow(query, id).Scan(
		&user.Id, &user.Username, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.ImageURL, &user.IsActive, &user.CreatedAt,
	)

	return user, err
}

func (s *service) EmailTaken(email string) bool {
	query := "SELECT EXISTS(SELECT 1 FROM fp_users WHERE email = $1)"

	var exists bool
	if err := s.db.QueryRow(query, email).Scan(&exists); err != nil {
		log.Printf("Error checking email: %v\n", err)
		return false
	}

	return exists
}

func (s *service) UpdateProfile(data model.UpdateProfileData) error {
	query := `UPDATE fp_users SET first_name = $1, last_name = $2, image_url = $3 WHERE id = $4`

	res, err := s.db.Exec(query, data.FirstName, data.LastName, data.ImageURL, data.UserId)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected != 1 {
		return fmt.Errorf("expected 1 user to be updated but was %d", rowsAffected)
	}

	return nil
}

func (s *service) GetActiveUsers() ([]model.UserEntity, error) {
	query := `SELECT id, username, email, password_hash, first_name, last_name, image_url, is_active, created_at
		FROM fp_users WHERE is_active ORDER BY id`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.UserEntity, 0)
	for rows.Next() {
		var user model.UserEntity
		err = rows.Scan(
			&user.Id, &user.Username, &user.Email, &user.PasswordHash,
			&user.FirstName, &user.LastName, &user.ImageURL, &user.IsActive, &user.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
