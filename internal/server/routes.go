package server

import (
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"

	"finpulse/internal/auth"
	"finpulse/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.Debug = s.debug
	e.Validator = NewValidator()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(s.HostMiddleware)

	e.GET("/", s.HelloWorldHandler)
	e.GET("/health", s.healthHandler)

	// AUTH endpoints
	e.POST("/auth/register", s.registerHandler)
	e.POST("/auth/login", s.loginHandler)

	// API v1 endpoints
	apiV1 := e.Group("/api/v1", s.JWTMiddleware)

	apiV1.GET("/profile", s.getProfileHandler)
	apiV1.PUT("/profile", s.updateProfileHandler)

	apiV1.GET("/categories", s.getCategoriesHandler)
	apiV1.POST("/categories", s.createCategoryHandler)
	apiV1.DELETE("/categories/:id", s.deleteCategoryHandler)

	apiV1.GET("/transactions", s.getTransactionsHandler)
	apiV1.POST("/transactions", s.createTransactionHandler)
	apiV1.GET("/transactions/summary", s.transactionSummaryHandler)
	apiV1.PUT("/transactions/:id", s.updateTransactionHandler)
	apiV1.DELETE("/transactions/:id", s.deleteTransactionHandler)

	apiV1.GET("/budgets", s.getBudgetHandler)
	apiV1.POST("/budgets", s.createBudgetHandler)
	apiV1.GET("/budgets/status", s.budgetStatusHandler)

	apiV1.GET("/savings-goal", s.getSavingsGoalHandler)
	apiV1.POST("/savings-goal", s.upsertSavingsGoalHandler)
	apiV1.POST("/savings-goal/add", s.addSavingsHandler)

	apiV1.GET("/subscriptions", s.getSubscriptionsHandler)
	apiV1.POST("/subscriptions", s.createSubscriptionHandler)
	apiV1.PUT("/subscriptions/:id", s.updateSubscriptionHandler)
	apiV1.DELETE("/subscriptions/:id", s.deleteSubscriptionHandler)
	apiV1.POST("/subscriptions/:id/paid", s.toggleSubscriptionPaidHandler)

	apiV1.GET("/insights", s.getInsightsHandler)
	apiV1.POST("/insights/generate", s.generateInsightHandler)

	apiV1.GET("/currency/convert", s.convertCurrencyHandler)

	// Admin v1 endpoints, used by the management CLI and cron triggers
	adminV1 := e.Group("/admin/v1", s.AdminMiddleware)
	adminV1.POST("/insights/run", s.runInsightsHandler)

	return e
}

// HostMiddleware rejects requests whose Host header is not in the
// configured allow list. An empty list or a "*" entry allows everything.
func (s *Server) HostMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if len(s.allowedHosts) == 0 {
			return next(c)
		}

		host := c.Request().Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}

		for _, allowed := range s.allowedHosts {
			if allowed == "*" || strings.EqualFold(allowed, host) {
				return next(c)
			}
		}

		return echo.NewHTTPError(http.StatusBadRequest, "Invalid Host header")
	}
}

func (s *Server) HelloWorldHandler(c echo.Context) error {
	resp := map[string]string{
		"message": "Hello World",
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.db.Health())
}

func (s *Server) registerHandler(c echo.Context) error {
	var dto model.RegisterDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if err := c.Validate(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	if s.db.EmailTaken(dto.Email) {
		return echo.NewHTTPError(http.StatusBadRequest, "A user with this email already exists")
	}

	pwHash, err := auth.HashPassword(dto.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	id, err := s.db.CreateUser(model.NewUserData{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: pwHash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		ImageURL:     model.PlaceholderImageURL,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("User could not be created: %v", err))
	}

	token, err := s.tokens.IssueToken(id, dto.Username)
	if err != nil {
		log.Printf("Error issuing token: %v\n", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not create token")
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"user": model.UserDTO{
			Id:       id,
			Username: dto.Username,
			Email:    dto.Email,
		},
		"token": token,
	})
}

func (s *Server) loginHandler(c echo.Context) error {
	var dto model.LoginDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if err := c.Validate(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	user, err := s.db.GetUserByUsername(dto.Username)
	if err != nil || !auth.ValidatePassword(dto.Password, user.PasswordHash) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	token, err := s.tokens.IssueToken(user.Id, user.Username)
	if err != nil {
		log.Printf("Error issuing token: %v\n", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not create token")
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (s *Server) getProfileHandler(c echo.Context) error {
	userId := s.userId(c)
	cacheKey := fmt.Sprintf("profile_%d", userId)

	var cached model.ProfileDTO
	if s.cache.GetJSON(c.Request().Context(), cacheKey, &cached) {
		return c.JSON(http.StatusOK, cached)
	}

	user, err := s.db.GetUserById(userId)
	if err == sql.ErrNoRows {
		return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	dto := profileDTO(user)
	s.cache.SetJSON(c.Request().Context(), cacheKey, dto, cacheTTL)

	return c.JSON(http.StatusOK, dto)
}

func (s *Server) updateProfileHandler(c echo.Context) error {
	userId := s.userId(c)

	var dto model.UpdateProfileDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if err := c.Validate(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	user, err := s.db.GetUserById(userId)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	if dto.FirstName == "" {
		dto.FirstName = user.FirstName
	}
	if dto.LastName == "" {
		dto.LastName = user.LastName
	}
	if dto.ImageURL == "" {
		dto.ImageURL = user.ImageURL
	}
	if dto.ImageURL == "" {
		dto.ImageURL = model.PlaceholderImageURL
	}

	err = s.db.UpdateProfile(model.UpdateProfileData{
		UserId:    userId,
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		ImageURL:  dto.ImageURL,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	s.cache.Delete(c.Request().Context(), fmt.Sprintf("profile_%d", userId))

	user.FirstName = dto.FirstName
	user.LastName = dto.LastName
	user.ImageURL = dto.ImageURL

	return c.JSON(http.StatusOK, profileDTO(user))
}

func profileDTO(user model.UserEntity) model.ProfileDTO {
	imageURL := user.ImageURL
	if imageURL == "" {
		imageURL = model.PlaceholderImageURL
	}

	return model.ProfileDTO{
		Id:        user.Id,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		ImageURL:  imageURL,
	}
}
