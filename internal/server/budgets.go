package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"finpulse/internal/model"

	"github.com/labstack/echo/v4"
)

// monthParam parses the optional month query parameter, defaulting to the
// first day of the current month.
func monthParam(c echo.Context) (time.Time, error) {
	raw := c.QueryParam("month")
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}

	month, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid month format, use YYYY-MM-DD")
	}
	return month, nil
}

func (s *Server) getBudgetHandler(c echo.Context) error {
	month, err := monthParam(c)
	if err != nil {
		return err
	}

	budget, err := s.db.GetBudget(s.userId(c), month)
	if err == sql.ErrNoRows {
		return echo.NewHTTPError(http.StatusNotFound, "Budget not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, model.BudgetDTO{
		Id:          budget.Id,
		Month:       budget.Month.Format(dateLayout),
		BudgetCents: budget.BudgetCents,
	})
}

func (s *Server) createBudgetHandler(c echo.Context) error {
	var dto model.CreateBudgetDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if err := c.Validate(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	month, _ := time.Parse(dateLayout, dto.Month)
	userId := s.userId(c)

	if s.db.BudgetExists(userId, month) {
		return echo.NewHTTPError(http.StatusConflict, "A budget already exists for this month")
	}

	id, err := s.db.CreateBudget(model.NewBudgetData{
		UserId:      userId,
		Month:       month,
		BudgetCents: dto.BudgetCents,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Budget could not be created: %v", err))
	}

	s.cache.DeletePattern(c.Request().Context(), fmt.Sprintf("budget_status_%d_*", userId))

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Budget created",
		"id":      id,
	})
}

func (s *Server) budgetStatusHandler(c echo.Context) error {
	month, err := monthParam(c)
	if err != nil {
		return err
	}

	userId := s.userId(c)
	cacheKey := fmt.Sprintf("budget_status_%d_%s", userId, month.Format("2006-01"))

	var cached model.BudgetStatusDTO
	if s.cache.GetJSON(c.Request().Context(), cacheKey, &cached) {
		return c.JSON(http.StatusOK, cached)
	}

	budget, err := s.db.GetBudget(userId, month)
	if err == sql.ErrNoRows {
		return echo.NewHTTPError(http.StatusNotFound, "Budget not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	expenditure, err := s.db.GetMonthExpenditure(userId, month)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	dto := model.BudgetStatusDTO{
		BudgetCents:      budget.BudgetCents,
		ExpenditureCents: expenditure,
		IsOverBudget:     expenditure > budget.BudgetCents,
		RemainingCents:   budget.BudgetCents - expenditure,
	}

	s.cache.SetJSON(c.Request().Context(), cacheKey, dto, cacheTTL)

	return c.JSON(http.StatusOK, dto)
}
