package model

type NewCategoryData struct {
	Name   string
	UserId int
}

type CategoryEntity struct {
	Id     int
	Name   string
	UserId int
}

type CreateCategoryDTO struct {
	Name string `json:"name" validate:"required,notblank"`
}

type CategoryDTO struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}
