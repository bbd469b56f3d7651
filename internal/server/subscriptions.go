package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"finpulse/internal/model"

	"github.com/labstack/echo/v4"
)

func (s *Server) getSubscriptionsHandler(c echo.Context) error {
	filter := model.SubscriptionFilter{UserId: s.userId(c)}

	monthRaw := c.QueryParam("month")
	yearRaw := c.QueryParam("year")
	if monthRaw != "" && yearRaw != "" {
		month, err := strconv.Atoi(monthRaw)
		if err != nil || month < 1 || month > 12 {
			return echo.NewHTTPError(http.StatusBadRequest, "Month must be a number between 1 and 12")
		}
		year, err := strconv.Atoi(yearRaw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Year must be a number")
		}
		filter.Month = month
		filter.Year = year
	}

	subs, err := s.db.GetSubscriptions(filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	dtos := make([]model.SubscriptionDTO, len(subs))
	for i, sub := range subs {
		dtos[i] = subscriptionDTO(sub)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"subscriptions": dtos,
	})
}

func (s *Server) createSubscriptionHandler(c echo.Context) error {
	dto, dueDate, err := s.bindSubscription(c)
	if err != nil {
		return err
	}

	id, err := s.db.CreateSubscription(model.NewSubscriptionData{
		UserId:        s.userId(c),
		Name:          dto.Name,
		AmountCents:   dto.AmountCents,
		Frequency:     dto.Frequency,
		PaymentMethod: dto.PaymentMethod,
		DueDate:       dueDate,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Subscription could not be created: %v", err))
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Subscription created",
		"id":      id,
	})
}

func (s *Server) updateSubscriptionHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Subscription id must be a number")
	}

	dto, dueDate, err := s.bindSubscription(c)
	if err != nil {
		return err
	}

	err = s.db.UpdateSubscription(model.UpdateSubscriptionData{
		Id:            id,
		UserId:        s.userId(c),
		Name:          dto.Name,
		AmountCents:   dto.AmountCents,
		Frequency:     dto.Frequency,
		PaymentMethod: dto.PaymentMethod,
		DueDate:       dueDate,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Subscription not found")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Subscription updated",
	})
}

func (s *Server) deleteSubscriptionHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Subscription id must be a number")
	}

	if err := s.db.DeleteSubscription(id, s.userId(c)); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Subscription not found")
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) toggleSubscriptionPaidHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Subscription id must be a number")
	}

	isPaid, err := s.db.ToggleSubscriptionPaid(id, s.userId(c))
	if err == sql.ErrNoRows {
		return echo.NewHTTPError(http.StatusNotFound, "Subscription not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	status := "unpaid"
	if isPaid {
		status = "paid"
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": fmt.Sprintf("Subscription marked as %s", status),
	})
}

// bindSubscription binds and validates the subscription payload shared by
// create and update, including the due date check.
func (s *Server) bindSubscription(c echo.Context) (model.CreateSubscriptionDTO, time.Time, error) {
	var dto model.CreateSubscriptionDTO
	if err := c.Bind(&dto); err != nil {
		return dto, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if err := c.Validate(&dto); err != nil {
		return dto, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, err)
	}

	dueDate, _ := time.Parse(dateLayout, dto.DueDate)
	if dueDate.Before(startOfToday()) {
		return dto, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "Due date must be in the future")
	}

	return dto, dueDate, nil
}

func subscriptionDTO(sub model.SubscriptionEntity) model.SubscriptionDTO {
	return model.SubscriptionDTO{
		Id:            sub.Id,
		Name:          sub.Name,
		AmountCents:   sub.AmountCents,
		Frequency:     sub.Frequency,
		PaymentMethod: sub.PaymentMethod,
		DueDate:       sub.DueDate.Format(dateLayout),
		NextDueDate:   sub.NextDueDate().Format(dateLayout),
		IsPaid:        sub.IsPaid,
	}
}
