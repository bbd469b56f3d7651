package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"finpulse/internal/model"

	"github.com/labstack/echo/v4"
)

func (s *Server) getCategoriesHandler(c echo.Context) error {
	categories, err := s.db.GetCategories(s.userId(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	dtos := make([]model.CategoryDTO, len(categories))
	for i, cat := range categories {
		dtos[i] = model.CategoryDTO{
			Id:   cat.Id,
			Name: cat.Name,
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"categories": dtos,
	})
}

func (s *Server) createCategoryHandler(c echo.Context) error {
	var dto model.CreateCategoryDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if err := c.Validate(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	id, err := s.db.CreateCategory(model.NewCategoryData{
		Name:   dto.Name,
		UserId: s.userId(c),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Category could not be created: %v", err))
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Category created",
		"id":      id,
	})
}

func (s *Server) deleteCategoryHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Category id must be a number")
	}

	userId := s.userId(c)

	category, err := s.db.GetCategory(id)
	if err == sql.ErrNoRows {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}
	if category.UserId != userId {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized")
	}

	if err := s.db.DeleteCategory(id, userId); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	s.invalidateTransactionCaches(c, userId)

	return c.NoContent(http.StatusNoContent)
}
