package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"time"

	"finpulse/internal/model"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"
)

// Service represents a service that interacts with a database.
type Service interface {
	CreateUser(data model.NewUserData) (int, error)
	GetUserByUsername(username string) (model.UserEntity, error)
	GetUserById(id int) (model.UserEntity, error)
	EmailTaken(email string) bool
	UpdateProfile(data model.UpdateProfileData) error
	GetActiveUsers() ([]model.UserEntity, error)

	CreateCategory(data model.NewCategoryData) (int, error)
	GetCategories(userId int) ([]model.CategoryEntity, error)
	GetCategory(id int) (model.CategoryEntity, error)
	DeleteCategory(id, userId int) error

	CreateTransaction(data model.NewTransactionData) (int, error)
	GetTransaction(id int) (model.TransactionEntity, error)
	GetTransactions(filter model.TransactionFilter) ([]model.TransactionEntity, error)
	UpdateTransaction(data model.UpdateTransactionData) error
	DeleteTransaction(id, userId int) error
	GetTransactionSummary(userId int) (model.SummaryEntity, error)
	GetMonthExpenditure(userId int, month time.Time) (int64, error)
	SumByCategoryNameSince(userId int, namePart string, since time.Time) (int64, error)

	CreateBudget(data model.NewBudgetData) (int, error)
	GetBudget(userId int, month time.Time) (model.BudgetEntity, error)
	BudgetExists(userId int, month time.Time) bool

	GetSavingsGoal(userId int) (model.SavingsGoalEntity, error)
	UpsertSavingsGoal(data model.NewSavingsGoalData) (int, error)
	AddSavings(userId int, amountCents int64) (model.SavingsGoalEntity, error)

	CreateSubscription(data model.NewSubscriptionData) (int, error)
	GetSubscription(id int) (model.SubscriptionEntity, error)
	GetSubscriptions(filter model.SubscriptionFilter) ([]model.SubscriptionEntity, error)
	UpdateSubscription(data model.UpdateSubscriptionData) error
	DeleteSubscription(id, userId int) error
	ToggleSubscriptionPaid(id, userId int) (bool, error)

	CreateInsight(data model.NewInsightData) (int, error)
	GetInsights(userId, offset, limit int) ([]model.InsightEntity, error)
	CountInsights(userId int) (int, error)
	GetLatestPersonalInsight(userId int) (model.InsightEntity, error)

	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error
}

type service struct {
	db *sql.DB
}

var dbInstance *service

func connString(config model.DatabaseConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		config.Username, config.Password, config.Host, config.Port, config.Database,
	)
}

func New(config model.DatabaseConfig) Service {
	// Reuse Connection
	if dbInstance != nil {
		return dbInstance
	}
	db, err := sql.Open("pgx", connString(config))
	if err != nil {
		log.Fatal(err)
	}
	dbInstance = &service{
		db: db,
	}

	return dbInstance
}

// WaitReady blocks until the database accepts connections or the context
// expires. It replaces the wait-for-it step of the container startup
// command: the binary itself sequences wait -> migrate -> serve.
func WaitReady(ctx context.Context, config model.DatabaseConfig) error {
	db, err := sql.Open("pgx", connString(config))
	if err != nil {
		return err
	}
	defer db.Close()

	delay := 250 * time.Millisecond
	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}

		log.Printf("Database at %s:%s not ready yet: %v", config.Host, config.Port, err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("giving up waiting for database: %w", err)
		case <-time.After(delay):
		}
		if delay < 5*time.Second {
			delay *= 2
		}
	}
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	err := s.db.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	if dbStats.OpenConnections > 40 {
		stats["message"] = "The database is experiencing heavy load."
	}

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

// Close closes the database connection.
// If an error occurs while closing the connection, it returns the error.
func (s *service) Close() error {
	log.Println("Disconnected from database")
	return s.db.Close()
}
