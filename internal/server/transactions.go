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

const dateLayout = "2006-01-02"

// startOfToday is midnight of the current date in UTC, comparable against
// the date-only request fields, which parse to UTC midnight.
func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Server) getTransactionsHandler(c echo.Context) error {
	filter := model.TransactionFilter{UserId: s.userId(c)}

	if raw := c.QueryParam("start_date"); raw != "" {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid start_date format, use YYYY-MM-DD")
		}
		filter.StartDate = date
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid end_date format, use YYYY-MM-DD")
		}
		filter.EndDate = date
	}
	if raw := c.QueryParam("category"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Category must be a number")
		}
		filter.CategoryId = id
	}

	cacheKey := fmt.Sprintf(
		"transactions_%d_%s_%s_%d",
		filter.UserId, filter.StartDate.Format(dateLayout), filter.EndDate.Format(dateLayout), filter.CategoryId,
	)

	var cached []model.TransactionDTO
	if s.cache.GetJSON(c.Request().Context(), cacheKey, &cached) {
		return c.JSON(http.StatusOK, map[string]any{
			"transactions": cached,
		})
	}

	transactions, err := s.db.GetTransactions(filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	user, err := s.db.GetUserById(filter.UserId)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	dtos := make([]model.TransactionDTO, len(transactions))
	for i, t := range transactions {
		dtos[i] = transactionDTO(t, user.Username)
	}

	s.cache.SetJSON(c.Request().Context(), cacheKey, dtos, cacheTTL)

	return c.JSON(http.StatusOK, map[string]any{
		"transactions": dtos,
	})
}

func (s *Server) createTransactionHandler(c echo.Context) error {
	var dto model.CreateTransactionDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if err := c.Validate(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	userId := s.userId(c)
	if err := s.checkCategoryOwner(dto.Category, userId); err != nil {
		return err
	}

	id, err := s.db.CreateTransaction(model.NewTransactionData{
		UserId:      userId,
		CategoryId:  dto.Category,
		AmountCents: dto.AmountCents,
		Description: dto.Description,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Transaction could not be created: %v", err))
	}

	s.invalidateTransactionCaches(c, userId)

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Transaction created",
		"id":      id,
	})
}

func (s *Server) updateTransactionHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Transaction id must be a number")
	}

	var dto model.CreateTransactionDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if err := c.Validate(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	userId := s.userId(c)
	if err := s.checkCategoryOwner(dto.Category, userId); err != nil {
		return err
	}

	err = s.db.UpdateTransaction(model.UpdateTransactionData{
		Id:          id,
		UserId:      userId,
		CategoryId:  dto.Category,
		AmountCents: dto.AmountCents,
		Description: dto.Description,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Transaction not found")
	}

	s.invalidateTransactionCaches(c, userId)

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Transaction updated",
	})
}

func (s *Server) deleteTransactionHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Transaction id must be a number")
	}

	userId := s.userId(c)
	if err := s.db.DeleteTransaction(id, userId); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Transaction not found")
	}

	s.invalidateTransactionCaches(c, userId)

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) transactionSummaryHandler(c echo.Context) error {
	userId := s.userId(c)
	cacheKey := fmt.Sprintf("transaction_summary_%d", userId)

	var cached model.SummaryDTO
	if s.cache.GetJSON(c.Request().Context(), cacheKey, &cached) {
		return c.JSON(http.StatusOK, cached)
	}

	summary, err := s.db.GetTransactionSummary(userId)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	dto := model.SummaryDTO{
		IncomeCents:   summary.IncomeCents,
		ExpenseCents:  summary.ExpenseCents,
		TopCategories: make([]model.CategorySpendDTO, len(summary.TopCategories)),
	}
	for i, spend := range summary.TopCategories {
		dto.TopCategories[i] = model.CategorySpendDTO{
			Category:   spend.Category,
			SpentCents: spend.TotalCents,
		}
	}

	s.cache.SetJSON(c.Request().Context(), cacheKey, dto, cacheTTL)

	return c.JSON(http.StatusOK, dto)
}

// checkCategoryOwner ensures the category exists and belongs to the user.
func (s *Server) checkCategoryOwner(categoryId, userId int) error {
	category, err := s.db.GetCategory(categoryId)
	if err == sql.ErrNoRows {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown category")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}
	if category.UserId != userId {
		return echo.NewHTTPError(http.StatusForbidden, "You do not have permission to use this category")
	}
	return nil
}

// invalidateTransactionCaches drops every cached aggregate that is
// derived from the user's transactions.
func (s *Server) invalidateTransactionCaches(c echo.Context, userId int) {
	ctx := c.Request().Context()
	s.cache.Delete(ctx, fmt.Sprintf("transaction_summary_%d", userId))
	s.cache.DeletePattern(ctx, fmt.Sprintf("transactions_%d_*", userId))
	s.cache.DeletePattern(ctx, fmt.Sprintf("budget_status_%d_*", userId))
}

func transactionDTO(t model.TransactionEntity, username string) model.TransactionDTO {
	return model.TransactionDTO{
		Id:          t.Id,
		Category:    t.CategoryId,
		AmountCents: t.AmountCents,
		Description: t.Description,
		Date:        t.Date.Format(dateLayout),
		User:        username,
	}
}
