package model

import "time"

const PlaceholderImageURL = "https://picsum.photos/150"

type NewUserData struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	ImageURL     string
}

type UserEntity struct {
	Id           int
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	ImageURL     string
	IsActive     bool
	CreatedAt    time.Time
}

type RegisterDTO struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserDTO struct {
	Id       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type UpdateProfileData struct {
	UserId    int
	FirstName string
	LastName  string
	ImageURL  string
}

type ProfileDTO struct {
	Id        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageUrl"`
}

type UpdateProfileDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageUrl" validate:"omitempty,url"`
}
