package server

import (
	"database/sql"
	"net/http"
	"time"

	"finpulse/internal/model"

	"github.com/labstack/echo/v4"
)

func (s *Server) getSavingsGoalHandler(c echo.Context) error {
	goal, err := s.db.GetSavingsGoal(s.userId(c))
	if err == sql.ErrNoRows {
		return echo.NewHTTPError(http.StatusNotFound, "No savings goal set")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, savingsGoalDTO(goal))
}

func (s *Server) upsertSavingsGoalHandler(c echo.Context) error {
	var dto model.CreateSavingsGoalDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if err := c.Validate(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	goalDate, _ := time.Parse(dateLayout, dto.GoalDate)
	if goalDate.Before(startOfToday()) {
		return echo.NewHTTPError(http.StatusBadRequest, "Goal date must be in the future")
	}

	userId := s.userId(c)
	id, err := s.db.UpsertSavingsGoal(model.NewSavingsGoalData{
		UserId:    userId,
		GoalCents: dto.GoalCents,
		GoalDate:  goalDate,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	goal, err := s.db.GetSavingsGoal(userId)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Savings goal saved",
		"id":      id,
		"goal":    savingsGoalDTO(goal),
	})
}

func (s *Server) addSavingsHandler(c echo.Context) error {
	var dto model.AddSavingsDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if err := c.Validate(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	userId := s.userId(c)
	goal, err := s.db.GetSavingsGoal(userId)
	if err == sql.ErrNoRows {
		return echo.NewHTTPError(http.StatusNotFound, "No savings goal set")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	if goal.Reached() {
		return echo.NewHTTPError(http.StatusBadRequest, "Goal has already been reached")
	}

	goal, err = s.db.AddSavings(userId, dto.AmountCents)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	message := "Savings added successfully"
	if goal.Reached() {
		message = "Congratulations! Goal reached and exceeded!"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": message,
		"goal":    savingsGoalDTO(goal),
	})
}

func savingsGoalDTO(goal model.SavingsGoalEntity) model.SavingsGoalDTO {
	return model.SavingsGoalDTO{
		Id:             goal.Id,
		GoalCents:      goal.GoalCents,
		CurrentCents:   goal.CurrentCents,
		GoalDate:       goal.GoalDate.Format(dateLayout),
		IsGoalReached:  goal.Reached(),
		RemainingCents: goal.RemainingCents(),
	}
}
