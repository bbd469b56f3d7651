package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"finpulse/internal/model"

	"github.com/labstack/echo/v4"
)

const insightPageSize = 6

func (s *Server) getInsightsHandler(c echo.Context) error {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	userId := s.userId(c)
	cacheKey := fmt.Sprintf("insights_%d_page_%d", userId, page)

	var cached model.InsightPageDTO
	if s.cache.GetJSON(c.Request().Context(), cacheKey, &cached) {
		return c.JSON(http.StatusOK, cached)
	}

	total, err := s.db.CountInsights(userId)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	insights, err := s.db.GetInsights(userId, (page-1)*insightPageSize, insightPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	dto := model.InsightPageDTO{
		Results:    make([]model.InsightDTO, len(insights)),
		Page:       page,
		TotalPages: (total + insightPageSize - 1) / insightPageSize,
		TotalItems: total,
	}
	for i, in := range insights {
		dto.Results[i] = insightDTO(in)
	}

	s.cache.SetJSON(c.Request().Context(), cacheKey, dto, cacheTTL)

	return c.JSON(http.StatusOK, dto)
}

func (s *Server) generateInsightHandler(c echo.Context) error {
	userId := s.userId(c)

	user, err := s.db.GetUserById(userId)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	generated, err := s.insights.GenerateForUser(c.Request().Context(), user, false)
	if err != nil {
		log.Printf("Error generating insight for %s: %v", user.Username, err)
		return echo.NewHTTPError(http.StatusBadRequest, "No personalized insight could be generated")
	}

	s.cache.DeletePattern(c.Request().Context(), fmt.Sprintf("insights_%d_page_*", userId))

	return c.JSON(http.StatusCreated, insightDTO(generated))
}

// runInsightsHandler generates automated insights for all active users.
// It backs both the management CLI and the cron trigger.
func (s *Server) runInsightsHandler(c echo.Context) error {
	generated, err := s.insights.RunForAllUsers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	s.cache.DeletePattern(c.Request().Context(), "insights_*")

	return c.JSON(http.StatusOK, map[string]any{
		"message":   "Insight run finished",
		"generated": generated,
	})
}

func insightDTO(in model.InsightEntity) model.InsightDTO {
	return model.InsightDTO{
		Id:          in.Id,
		Title:       in.Title,
		Content:     in.Content,
		IsAutomated: in.IsAutomated,
		DatePosted:  in.DatePosted.Format(time.RFC3339),
	}
}
