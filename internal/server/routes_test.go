package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"path"
	"reflect"
	"strconv"
	"sync"
	"testing"
	"time"

	"finpulse/internal/auth"
	"finpulse/internal/cache"
	"finpulse/internal/database"
	"finpulse/internal/insight"
	"finpulse/internal/model"

	"github.com/labstack/echo/v4"
)

var (
	db         database.Service
	testUserId int
)

func TestMain(m *testing.M) {
	config, teardown, err := database.SetupTestDatabase()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	db = database.New(config)

	pwHash, err := auth.HashPassword("password123")
	if err != nil {
		log.Fatalf("Could not hash test password: %v", err)
	}
	testUserId, err = db.CreateUser(model.NewUserData{
		Username:     "testuser",
		Email:        "testuser@example.com",
		PasswordHash: pwHash,
		ImageURL:     model.PlaceholderImageURL,
	})
	if err != nil {
		log.Fatalf("Could not create test user: %v", err)
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("could not teardown postgres container: %v", err)
	}
}

func newTestServer() *Server {
	return &Server{
		db:        db,
		cache:     cache.New("", ""),
		tokens:    auth.NewTokenIssuer("test-secret"),
		insights:  insight.NewGenerator(db, ""),
		cliSecret: "test-cli-secret",
	}
}

func newJSONContext(t *testing.T, method, path string, payload any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Could not marshal request body: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	e := echo.New()
	e.Validator = NewValidator()
	resp := httptest.NewRecorder()
	c := e.NewContext(req, resp)
	c.Set("userId", testUserId)

	return c, resp
}

func httpErrorCode(t *testing.T, err error) int {
	t.Helper()

	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func TestHandler(t *testing.T) {
	s := newTestServer()
	c, resp := newJSONContext(t, http.MethodGet, "/", nil)

	if err := s.HelloWorldHandler(c); err != nil {
		t.Errorf("handler() error = %v", err)
		return
	}
	if resp.Code != http.StatusOK {
		t.Errorf("handler() wrong status code = %v", resp.Code)
		return
	}
	expected := map[string]string{"message": "Hello World"}
	var actual map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&actual); err != nil {
		t.Errorf("handler() error decoding response body: %v", err)
		return
	}
	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("handler() wrong response body. expected = %v, actual = %v", expected, actual)
		return
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer()

	c, resp := newJSONContext(t, http.MethodPost, "/auth/register", model.RegisterDTO{
		Username:  "newcomer",
		Email:     "newcomer@example.com",
		Password:  "password123",
		Password2: "password123",
	})
	if err := s.registerHandler(c); err != nil {
		t.Fatalf("registerHandler() error = %v", err)
	}
	if resp.Code != http.StatusCreated {
		t.Fatalf("registerHandler() wrong status code = %v", resp.Code)
	}
	var registered map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&registered); err != nil {
		t.Fatalf("registerHandler() error decoding response body: %v", err)
	}
	if registered["token"] == "" {
		t.Fatal("registerHandler() did not return a token")
	}

	// Registering the same email again must be rejected.
	c, _ = newJSONContext(t, http.MethodPost, "/auth/register", model.RegisterDTO{
		Username:  "newcomer2",
		Email:     "newcomer@example.com",
		Password:  "password123",
		Password2: "password123",
	})
	err := s.registerHandler(c)
	if err == nil {
		t.Fatal("registerHandler() was expected to fail for a taken email, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("registerHandler() wrong status code for taken email = %v", code)
	}

	c, resp = newJSONContext(t, http.MethodPost, "/auth/login", model.LoginDTO{
		Username: "newcomer",
		Password: "password123",
	})
	if err := s.loginHandler(c); err != nil {
		t.Fatalf("loginHandler() error = %v", err)
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("loginHandler() wrong status code = %v", resp.Code)
	}
	var loggedIn map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&loggedIn); err != nil {
		t.Fatalf("loginHandler() error decoding response body: %v", err)
	}

	userId, err := s.tokens.VerifyToken(loggedIn["token"])
	if err != nil {
		t.Fatalf("could not verify issued token: %v", err)
	}
	if userId == testUserId {
		t.Fatal("token was issued for the wrong user")
	}

	c, _ = newJSONContext(t, http.MethodPost, "/auth/login", model.LoginDTO{
		Username: "newcomer",
		Password: "wrong-password",
	})
	err = s.loginHandler(c)
	if err == nil {
		t.Fatal("loginHandler() was expected to fail for a wrong password, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusUnauthorized {
		t.Fatalf("loginHandler() wrong status code for bad credentials = %v", code)
	}
}

func TestRegisterPasswordMismatch(t *testing.T) {
	s := newTestServer()

	c, _ := newJSONContext(t, http.MethodPost, "/auth/register", model.RegisterDTO{
		Username:  "mismatch",
		Email:     "mismatch@example.com",
		Password:  "password123",
		Password2: "different123",
	})
	err := s.registerHandler(c)
	if err == nil {
		t.Fatal("registerHandler() was expected to fail validation, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("registerHandler() wrong status code = %v", code)
	}
}

func TestProfileHandlers(t *testing.T) {
	s := newTestServer()

	c, resp := newJSONContext(t, http.MethodGet, "/api/v1/profile", nil)
	if err := s.getProfileHandler(c); err != nil {
		t.Fatalf("getProfileHandler() error = %v", err)
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("getProfileHandler() wrong status code = %v", resp.Code)
	}
	var profile model.ProfileDTO
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		t.Fatalf("getProfileHandler() error decoding response body: %v", err)
	}
	if profile.Username != "testuser" {
		t.Fatalf("expected testuser, got %s", profile.Username)
	}

	c, resp = newJSONContext(t, http.MethodPut, "/api/v1/profile", model.UpdateProfileDTO{
		FirstName: "Test",
		LastName:  "User",
	})
	if err := s.updateProfileHandler(c); err != nil {
		t.Fatalf("updateProfileHandler() error = %v", err)
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("updateProfileHandler() wrong status code = %v", resp.Code)
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		t.Fatalf("updateProfileHandler() error decoding response body: %v", err)
	}
	if profile.FirstName != "Test" || profile.LastName != "User" {
		t.Fatalf("profile was not updated: %+v", profile)
	}
}

func createCategory(t *testing.T, s *Server, name string) int {
	t.Helper()

	c, resp := newJSONContext(t, http.MethodPost, "/api/v1/categories", model.CreateCategoryDTO{Name: name})
	if err := s.createCategoryHandler(c); err != nil {
		t.Fatalf("createCategoryHandler() error = %v", err)
	}
	if resp.Code != http.StatusCreated {
		t.Fatalf("createCategoryHandler() wrong status code = %v", resp.Code)
	}
	var actual map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&actual); err != nil {
		t.Fatalf("createCategoryHandler() error decoding response body: %v", err)
	}

	return int(actual["id"].(float64))
}

func TestCategoryHandlers(t *testing.T) {
	s := newTestServer()

	catId := createCategory(t, s, "Test groceries")

	c, resp := newJSONContext(t, http.MethodGet, "/api/v1/categories", nil)
	if err := s.getCategoriesHandler(c); err != nil {
		t.Fatalf("getCategoriesHandler() error = %v", err)
	}
	var listed map[string][]model.CategoryDTO
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("getCategoriesHandler() error decoding response body: %v", err)
	}
	found := false
	for _, cat := range listed["categories"] {
		if cat.Id == catId {
			found = true
		}
	}
	if !found {
		t.Fatalf("created category %d not in listing %+v", catId, listed)
	}

	c, _ = newJSONContext(t, http.MethodPost, "/api/v1/categories", model.CreateCategoryDTO{Name: "   "})
	err := s.createCategoryHandler(c)
	if err == nil {
		t.Fatal("createCategoryHandler() was expected to fail for a blank name, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("createCategoryHandler() wrong status code for blank name = %v", code)
	}

	c, resp = newJSONContext(t, http.MethodDelete, "/api/v1/categories/"+strconv.Itoa(catId), nil)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(catId))
	if err := s.deleteCategoryHandler(c); err != nil {
		t.Fatalf("deleteCategoryHandler() error = %v", err)
	}
	if resp.Code != http.StatusNoContent {
		t.Fatalf("deleteCategoryHandler() wrong status code = %v", resp.Code)
	}
}

func TestDeleteForeignCategory(t *testing.T) {
	s := newTestServer()

	otherId, err := db.CreateUser(model.NewUserData{
		Username:     "otheruser",
		Email:        "otheruser@example.com",
		PasswordHash: "not-a-real-hash",
	})
	if err != nil {
		t.Fatalf("Could not create user: %v", err)
	}
	catId, err := db.CreateCategory(model.NewCategoryData{Name: "Foreign", UserId: otherId})
	if err != nil {
		t.Fatalf("Could not create category: %v", err)
	}

	c, _ := newJSONContext(t, http.MethodDelete, "/api/v1/categories/"+strconv.Itoa(catId), nil)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(catId))

	err = s.deleteCategoryHandler(c)
	if err == nil {
		t.Fatal("deleteCategoryHandler() was expected to fail for a foreign category, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusForbidden {
		t.Fatalf("deleteCategoryHandler() wrong status code = %v", code)
	}
}

func TestTransactionHandlers(t *testing.T) {
	s := newTestServer()

	catId := createCategory(t, s, "Test rent")

	c, resp := newJSONContext(t, http.MethodPost, "/api/v1/transactions", model.CreateTransactionDTO{
		Category:    catId,
		AmountCents: -42000,
		Description: "Rent payment",
	})
	if err := s.createTransactionHandler(c); err != nil {
		t.Fatalf("createTransactionHandler() error = %v", err)
	}
	if resp.Code != http.StatusCreated {
		t.Fatalf("createTransactionHandler() wrong status code = %v", resp.Code)
	}
	var created map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("createTransactionHandler() error decoding response body: %v", err)
	}
	txId := int(created["id"].(float64))

	c, resp = newJSONContext(t, http.MethodGet, "/api/v1/transactions?category="+strconv.Itoa(catId), nil)
	if err := s.getTransactionsHandler(c); err != nil {
		t.Fatalf("getTransactionsHandler() error = %v", err)
	}
	var listed map[string][]model.TransactionDTO
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("getTransactionsHandler() error decoding response body: %v", err)
	}
	if len(listed["transactions"]) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(listed["transactions"]))
	}
	if listed["transactions"][0].User != "testuser" {
		t.Fatalf("expected transaction user testuser, got %s", listed["transactions"][0].User)
	}

	c, resp = newJSONContext(t, http.MethodGet, "/api/v1/transactions/summary", nil)
	if err := s.transactionSummaryHandler(c); err != nil {
		t.Fatalf("transactionSummaryHandler() error = %v", err)
	}
	var summary model.SummaryDTO
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("transactionSummaryHandler() error decoding response body: %v", err)
	}
	if summary.ExpenseCents < 42000 {
		t.Fatalf("expected expenses of at least 42000, got %d", summary.ExpenseCents)
	}

	c, resp = newJSONContext(t, http.MethodDelete, "/api/v1/transactions/"+strconv.Itoa(txId), nil)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(txId))
	if err := s.deleteTransactionHandler(c); err != nil {
		t.Fatalf("deleteTransactionHandler() error = %v", err)
	}
	if resp.Code != http.StatusNoContent {
		t.Fatalf("deleteTransactionHandler() wrong status code = %v", resp.Code)
	}
}

func TestCreateTransactionUnknownCategory(t *testing.T) {
	s := newTestServer()

	c, _ := newJSONContext(t, http.MethodPost, "/api/v1/transactions", model.CreateTransactionDTO{
		Category:    999999,
		AmountCents: -100,
		Description: "Nope",
	})
	err := s.createTransactionHandler(c)
	if err == nil {
		t.Fatal("createTransactionHandler() was expected to fail for an unknown category, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("createTransactionHandler() wrong status code = %v", code)
	}
}

func TestBudgetHandlers(t *testing.T) {
	s := newTestServer()

	month := "2027-03-01"
	c, resp := newJSONContext(t, http.MethodPost, "/api/v1/budgets", model.CreateBudgetDTO{
		Month:       month,
		BudgetCents: 150000,
	})
	if err := s.createBudgetHandler(c); err != nil {
		t.Fatalf("createBudgetHandler() error = %v", err)
	}
	if resp.Code != http.StatusCreated {
		t.Fatalf("createBudgetHandler() wrong status code = %v", resp.Code)
	}

	c, _ = newJSONContext(t, http.MethodPost, "/api/v1/budgets", model.CreateBudgetDTO{
		Month:       month,
		BudgetCents: 200000,
	})
	err := s.createBudgetHandler(c)
	if err == nil {
		t.Fatal("createBudgetHandler() was expected to fail for a duplicate month, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusConflict {
		t.Fatalf("createBudgetHandler() wrong status code for duplicate = %v", code)
	}

	c, resp = newJSONContext(t, http.MethodGet, "/api/v1/budgets/status?month="+month, nil)
	if err := s.budgetStatusHandler(c); err != nil {
		t.Fatalf("budgetStatusHandler() error = %v", err)
	}
	var status model.BudgetStatusDTO
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("budgetStatusHandler() error decoding response body: %v", err)
	}
	if status.BudgetCents != 150000 {
		t.Fatalf("expected budget 150000, got %d", status.BudgetCents)
	}
	if status.IsOverBudget {
		t.Fatal("expected budget not to be exceeded")
	}

	c, _ = newJSONContext(t, http.MethodGet, "/api/v1/budgets/status?month=2030-01-01", nil)
	err = s.budgetStatusHandler(c)
	if err == nil {
		t.Fatal("budgetStatusHandler() was expected to fail for a missing budget, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusNotFound {
		t.Fatalf("budgetStatusHandler() wrong status code for missing budget = %v", code)
	}
}

func TestSavingsGoalHandlers(t *testing.T) {
	s := newTestServer()

	goalDate := time.Now().AddDate(0, 6, 0).Format("2006-01-02")
	c, resp := newJSONContext(t, http.MethodPost, "/api/v1/savings-goal", model.CreateSavingsGoalDTO{
		GoalCents: 30000,
		GoalDate:  goalDate,
	})
	if err := s.upsertSavingsGoalHandler(c); err != nil {
		t.Fatalf("upsertSavingsGoalHandler() error = %v", err)
	}
	if resp.Code != http.StatusCreated {
		t.Fatalf("upsertSavingsGoalHandler() wrong status code = %v", resp.Code)
	}

	c, _ = newJSONContext(t, http.MethodPost, "/api/v1/savings-goal", model.CreateSavingsGoalDTO{
		GoalCents: 30000,
		GoalDate:  "2020-01-01",
	})
	err := s.upsertSavingsGoalHandler(c)
	if err == nil {
		t.Fatal("upsertSavingsGoalHandler() was expected to fail for a past date, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("upsertSavingsGoalHandler() wrong status code for past date = %v", code)
	}

	c, resp = newJSONContext(t, http.MethodPost, "/api/v1/savings-goal/add", model.AddSavingsDTO{AmountCents: 40000})
	if err := s.addSavingsHandler(c); err != nil {
		t.Fatalf("addSavingsHandler() error = %v", err)
	}
	var added map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
		t.Fatalf("addSavingsHandler() error decoding response body: %v", err)
	}
	if added["message"] != "Congratulations! Goal reached and exceeded!" {
		t.Fatalf("expected congratulation message, got %v", added["message"])
	}

	// The goal is reached, further deposits are rejected.
	c, _ = newJSONContext(t, http.MethodPost, "/api/v1/savings-goal/add", model.AddSavingsDTO{AmountCents: 100})
	err = s.addSavingsHandler(c)
	if err == nil {
		t.Fatal("addSavingsHandler() was expected to fail for a reached goal, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("addSavingsHandler() wrong status code for reached goal = %v", code)
	}
}

func TestSubscriptionHandlers(t *testing.T) {
	s := newTestServer()

	dueDate := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	c, resp := newJSONContext(t, http.MethodPost, "/api/v1/subscriptions", model.CreateSubscriptionDTO{
		Name:          "Music service",
		AmountCents:   999,
		Frequency:     "monthly",
		PaymentMethod: "card",
		DueDate:       dueDate,
	})
	if err := s.createSubscriptionHandler(c); err != nil {
		t.Fatalf("createSubscriptionHandler() error = %v", err)
	}
	if resp.Code != http.StatusCreated {
		t.Fatalf("createSubscriptionHandler() wrong status code = %v", resp.Code)
	}
	var created map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("createSubscriptionHandler() error decoding response body: %v", err)
	}
	subId := int(created["id"].(float64))

	c, _ = newJSONContext(t, http.MethodPost, "/api/v1/subscriptions", model.CreateSubscriptionDTO{
		Name:          "Expired service",
		AmountCents:   999,
		Frequency:     "monthly",
		PaymentMethod: "card",
		DueDate:       "2020-01-01",
	})
	err := s.createSubscriptionHandler(c)
	if err == nil {
		t.Fatal("createSubscriptionHandler() was expected to fail for a past due date, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("createSubscriptionHandler() wrong status code for past date = %v", code)
	}

	c, _ = newJSONContext(t, http.MethodPost, "/api/v1/subscriptions", model.CreateSubscriptionDTO{
		Name:          "Odd service",
		AmountCents:   999,
		Frequency:     "daily",
		PaymentMethod: "card",
		DueDate:       dueDate,
	})
	err = s.createSubscriptionHandler(c)
	if err == nil {
		t.Fatal("createSubscriptionHandler() was expected to fail for an invalid frequency, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("createSubscriptionHandler() wrong status code for bad frequency = %v", code)
	}

	c, resp = newJSONContext(t, http.MethodPost, "/api/v1/subscriptions/"+strconv.Itoa(subId)+"/paid", nil)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(subId))
	if err := s.toggleSubscriptionPaidHandler(c); err != nil {
		t.Fatalf("toggleSubscriptionPaidHandler() error = %v", err)
	}
	var toggled map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&toggled); err != nil {
		t.Fatalf("toggleSubscriptionPaidHandler() error decoding response body: %v", err)
	}
	if toggled["status"] != "Subscription marked as paid" {
		t.Fatalf("unexpected toggle status: %v", toggled["status"])
	}

	c, resp = newJSONContext(t, http.MethodGet, "/api/v1/subscriptions", nil)
	if err := s.getSubscriptionsHandler(c); err != nil {
		t.Fatalf("getSubscriptionsHandler() error = %v", err)
	}
	var listed map[string][]model.SubscriptionDTO
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("getSubscriptionsHandler() error decoding response body: %v", err)
	}
	found := false
	for _, sub := range listed["subscriptions"] {
		if sub.Id == subId && sub.IsPaid {
			found = true
		}
	}
	if !found {
		t.Fatalf("paid subscription %d not in listing %+v", subId, listed)
	}
}

func TestInsightHandlers(t *testing.T) {
	s := newTestServer()

	// Without an API key the generator falls back to the static insight.
	c, resp := newJSONContext(t, http.MethodPost, "/api/v1/insights/generate", nil)
	if err := s.generateInsightHandler(c); err != nil {
		t.Fatalf("generateInsightHandler() error = %v", err)
	}
	if resp.Code != http.StatusCreated {
		t.Fatalf("generateInsightHandler() wrong status code = %v", resp.Code)
	}
	var generated model.InsightDTO
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		t.Fatalf("generateInsightHandler() error decoding response body: %v", err)
	}
	if generated.Title != "Essential Financial Wellness Tips" {
		t.Fatalf("expected the fallback insight, got %q", generated.Title)
	}
	if generated.IsAutomated {
		t.Fatal("user requested insights must not be marked automated")
	}

	c, resp = newJSONContext(t, http.MethodGet, "/api/v1/insights?page=1", nil)
	if err := s.getInsightsHandler(c); err != nil {
		t.Fatalf("getInsightsHandler() error = %v", err)
	}
	var page model.InsightPageDTO
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("getInsightsHandler() error decoding response body: %v", err)
	}
	if page.Page != 1 {
		t.Fatalf("expected page 1, got %d", page.Page)
	}
	if page.TotalItems < 1 || len(page.Results) < 1 {
		t.Fatalf("expected at least one insight, got %+v", page)
	}
}

func TestRunInsightsHandler(t *testing.T) {
	s := newTestServer()

	c, resp := newJSONContext(t, http.MethodPost, "/admin/v1/insights/run", nil)
	if err := s.runInsightsHandler(c); err != nil {
		t.Fatalf("runInsightsHandler() error = %v", err)
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("runInsightsHandler() wrong status code = %v", resp.Code)
	}
	var actual map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&actual); err != nil {
		t.Fatalf("runInsightsHandler() error decoding response body: %v", err)
	}
	if actual["generated"].(float64) < 1 {
		t.Fatalf("expected at least one generated insight, got %v", actual["generated"])
	}
}

func TestJWTMiddleware(t *testing.T) {
	s := newTestServer()
	e := echo.New()

	handler := s.JWTMiddleware(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]int{"userId": s.userId(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	resp := httptest.NewRecorder()
	err := handler(e.NewContext(req, resp))
	if err == nil {
		t.Fatal("JWTMiddleware was expected to reject a missing header, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusUnauthorized {
		t.Fatalf("JWTMiddleware wrong status code for missing header = %v", code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp = httptest.NewRecorder()
	err = handler(e.NewContext(req, resp))
	if err == nil {
		t.Fatal("JWTMiddleware was expected to reject a bad token, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusUnauthorized {
		t.Fatalf("JWTMiddleware wrong status code for bad token = %v", code)
	}

	token, err := s.tokens.IssueToken(testUserId, "testuser")
	if err != nil {
		t.Fatalf("could not issue token: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	resp = httptest.NewRecorder()
	if err := handler(e.NewContext(req, resp)); err != nil {
		t.Fatalf("JWTMiddleware rejected a valid token: %v", err)
	}
	var actual map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&actual); err != nil {
		t.Fatalf("error decoding response body: %v", err)
	}
	if actual["userId"] != testUserId {
		t.Fatalf("expected userId %d, got %d", testUserId, actual["userId"])
	}
}

func TestAdminMiddleware(t *testing.T) {
	s := newTestServer()
	e := echo.New()

	handler := s.AdminMiddleware(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/admin/v1/insights/run", nil)
	req.Header.Set("Authorization", "Bearer wrong-secret")
	resp := httptest.NewRecorder()
	err := handler(e.NewContext(req, resp))
	if err == nil {
		t.Fatal("AdminMiddleware was expected to reject a wrong secret, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusUnauthorized {
		t.Fatalf("AdminMiddleware wrong status code = %v", code)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/v1/insights/run", nil)
	req.Header.Set("Authorization", "Bearer test-cli-secret")
	resp = httptest.NewRecorder()
	if err := handler(e.NewContext(req, resp)); err != nil {
		t.Fatalf("AdminMiddleware rejected the configured secret: %v", err)
	}
}

func TestHostMiddleware(t *testing.T) {
	s := newTestServer()
	s.allowedHosts = []string{"example.com"}
	e := echo.New()

	handler := s.HostMiddleware(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "evil.com"
	resp := httptest.NewRecorder()
	err := handler(e.NewContext(req, resp))
	if err == nil {
		t.Fatal("HostMiddleware was expected to reject an unknown host, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("HostMiddleware wrong status code = %v", code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "example.com:8000"
	resp = httptest.NewRecorder()
	if err := handler(e.NewContext(req, resp)); err != nil {
		t.Fatalf("HostMiddleware rejected an allowed host: %v", err)
	}

	s.allowedHosts = []string{"*"}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "anything.example.org"
	resp = httptest.NewRecorder()
	if err := handler(e.NewContext(req, resp)); err != nil {
		t.Fatalf("HostMiddleware rejected the wildcard host: %v", err)
	}
}

// memoryCache is an in-process cache.Cache used to observe caching
// behavior in handler tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) GetJSON(ctx context.Context, key string, dest any) bool {
	m.mu.Lock()
	raw, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (m *memoryCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.entries[key] = raw
	m.mu.Unlock()
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	m.mu.Unlock()
}

func (m *memoryCache) DeletePattern(ctx context.Context, pattern string) {
	m.mu.Lock()
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}

func TestTransactionListCaching(t *testing.T) {
	s := newTestServer()
	s.cache = newMemoryCache()

	catId := createCategory(t, s, "Cached groceries")
	listPath := "/api/v1/transactions?category=" + strconv.Itoa(catId)

	listLen := func() int {
		t.Helper()
		c, resp := newJSONContext(t, http.MethodGet, listPath, nil)
		if err := s.getTransactionsHandler(c); err != nil {
			t.Fatalf("getTransactionsHandler() error = %v", err)
		}
		var listed map[string][]model.TransactionDTO
		if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
			t.Fatalf("getTransactionsHandler() error decoding response body: %v", err)
		}
		return len(listed["transactions"])
	}

	c, _ := newJSONContext(t, http.MethodPost, "/api/v1/transactions", model.CreateTransactionDTO{
		Category:    catId,
		AmountCents: -1000,
		Description: "First",
	})
	if err := s.createTransactionHandler(c); err != nil {
		t.Fatalf("createTransactionHandler() error = %v", err)
	}

	if got := listLen(); got != 1 {
		t.Fatalf("expected 1 transaction, got %d", got)
	}

	// A write behind the handler's back is invisible: the list is cached.
	_, err := db.CreateTransaction(model.NewTransactionData{
		UserId:      testUserId,
		CategoryId:  catId,
		AmountCents: -2000,
		Description: "Second",
	})
	if err != nil {
		t.Fatalf("Could not create transaction: %v", err)
	}
	if got := listLen(); got != 1 {
		t.Fatalf("expected the cached list of 1 transaction, got %d", got)
	}

	// A write through the handler invalidates the cached list.
	c, _ = newJSONContext(t, http.MethodPost, "/api/v1/transactions", model.CreateTransactionDTO{
		Category:    catId,
		AmountCents: -3000,
		Description: "Third",
	})
	if err := s.createTransactionHandler(c); err != nil {
		t.Fatalf("createTransactionHandler() error = %v", err)
	}
	if got := listLen(); got != 3 {
		t.Fatalf("expected 3 transactions after invalidation, got %d", got)
	}
}

func TestSubscriptionDueDateBoundary(t *testing.T) {
	s := newTestServer()

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	c, _ := newJSONContext(t, http.MethodPost, "/api/v1/subscriptions", model.CreateSubscriptionDTO{
		Name:          "Stale service",
		AmountCents:   999,
		Frequency:     "monthly",
		PaymentMethod: "card",
		DueDate:       yesterday,
	})
	err := s.createSubscriptionHandler(c)
	if err == nil {
		t.Fatal("createSubscriptionHandler() was expected to reject yesterday's due date, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("createSubscriptionHandler() wrong status code for yesterday = %v", code)
	}

	// Today itself is still allowed.
	today := time.Now().Format("2006-01-02")
	c, resp := newJSONContext(t, http.MethodPost, "/api/v1/subscriptions", model.CreateSubscriptionDTO{
		Name:          "Fresh service",
		AmountCents:   999,
		Frequency:     "monthly",
		PaymentMethod: "card",
		DueDate:       today,
	})
	if err := s.createSubscriptionHandler(c); err != nil {
		t.Fatalf("createSubscriptionHandler() error for today's due date = %v", err)
	}
	if resp.Code != http.StatusCreated {
		t.Fatalf("createSubscriptionHandler() wrong status code for today = %v", resp.Code)
	}
}

func TestSavingsGoalDateBoundary(t *testing.T) {
	s := newTestServer()

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	c, _ := newJSONContext(t, http.MethodPost, "/api/v1/savings-goal", model.CreateSavingsGoalDTO{
		GoalCents: 1000,
		GoalDate:  yesterday,
	})
	err := s.upsertSavingsGoalHandler(c)
	if err == nil {
		t.Fatal("upsertSavingsGoalHandler() was expected to reject yesterday's goal date, but didnt!")
	}
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("upsertSavingsGoalHandler() wrong status code for yesterday = %v", code)
	}

	today := time.Now().Format("2006-01-02")
	c, resp := newJSONContext(t, http.MethodPost, "/api/v1/savings-goal", model.CreateSavingsGoalDTO{
		GoalCents: 1000,
		GoalDate:  today,
	})
	if err := s.upsertSavingsGoalHandler(c); err != nil {
		t.Fatalf("upsertSavingsGoalHandler() error for today's goal date = %v", err)
	}
	if resp.Code != http.StatusCreated {
		t.Fatalf("upsertSavingsGoalHandler() wrong status code for today = %v", resp.Code)
	}
}
