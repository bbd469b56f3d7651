// Package insight produces financial insights from a user's recent
// transactions, using a generative language model with a static fallback.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"finpulse/internal/database"
	"finpulse/internal/model"
)

const (
	defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"
	maxTitleLen     = 200
)

var whitespace = regexp.MustCompile(`\s+`)

type Generator struct {
	db       database.Service
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewGenerator(db database.Service, apiKey string) *Generator {
	return &Generator{
		db:       db,
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// GenerateForUser creates and stores a single insight for one user.
// Automated marks scheduler-produced insights as opposed to ones the user
// requested.
func (g *Generator) GenerateForUser(ctx context.Context, user model.UserEntity, automated bool) (model.InsightEntity, error) {
	metrics, err := CollectMetrics(g.db, user.Id, user.Username)
	if err != nil {
		return model.InsightEntity{}, fmt.Errorf("collecting metrics for %s: %w", user.Username, err)
	}

	title, content := g.generate(ctx, metrics)
	title = TruncateTitle(title)
	if title == "" || content == "" {
		return model.InsightEntity{}, fmt.Errorf("no insight could be generated for %s", user.Username)
	}

	id, err := g.db.CreateInsight(model.NewInsightData{
		UserId:      user.Id,
		Title:       title,
		Content:     content,
		IsAutomated: automated,
	})
	if err != nil {
		return model.InsightEntity{}, err
	}

	return model.InsightEntity{
		Id:          id,
		UserId:      user.Id,
		Title:       title,
		Content:     content,
		IsAutomated: automated,
		DatePosted:  time.Now(),
	}, nil
}

// RunForAllUsers generates automated insights for every active user.
// Failures for single users are logged and skipped.
func (g *Generator) RunForAllUsers(ctx context.Context) (int, error) {
	users, err := g.db.GetActiveUsers()
	if err != nil {
		return 0, err
	}

	generated := 0
	for _, user := range users {
		if _, err := g.GenerateForUser(ctx, user, true); err != nil {
			log.Printf("Error generating insight for user %s: %v", user.Username, err)
			continue
		}
		generated++
	}

	return generated, nil
}

func (g *Generator) generate(ctx context.Context, m Metrics) (string, string) {
	prompt := buildPrompt(m)

	text, err := g.complete(ctx, prompt)
	if err != nil {
		log.Printf("Error generating personalized insight: %v", err)
		return fallbackInsight()
	}

	title, content := splitGenerated(text)
	if title == "" || content == "" {
		return fallbackInsight()
	}
	return title, content
}

func buildPrompt(m Metrics) string {
	return fmt.Sprintf(`Generate a personalized financial insight based on the following metrics:
- Monthly Income: $%.2f
- Monthly Expenses: $%.2f
- Net Monthly Income: $%.2f
- Monthly Savings: $%.2f
- Monthly Investments: $%.2f
- Savings Rate: %.2f%%

Provide a concise, actionable financial insight that:
1. Highlights the user's current financial health
2. Offers specific, personalized advice
3. Suggests potential improvements
4. Uses a supportive and motivational tone
5. Ensure the title is clear and succinct (under 200 characters)`,
		cents(m.IncomeCents), cents(m.ExpenseCents), cents(m.NetIncomeCents),
		cents(m.SavingsCents), cents(m.InvestmentCents), m.SavingsRate,
	)
}

func cents(c int64) float64 {
	return float64(c) / 100
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("no API key configured")
	}

	reqBody := generateRequest{
		Contents: []generateContent{
			{Parts: []generatePart{{Text: prompt}}},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", g.endpoint, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate call failed with status %d", res.StatusCode)
	}

	var resBody generateResponse
	if err := json.NewDecoder(res.Body).Decode(&resBody); err != nil {
		return "", err
	}
	if len(resBody.Candidates) == 0 || len(resBody.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generate call returned no candidates")
	}

	return resBody.Candidates[0].Content.Parts[0].Text, nil
}

// splitGenerated treats the first line of the model output as the title
// and the rest as the content.
func splitGenerated(text string) (string, string) {
	lines := strings.SplitN(strings.TrimSpace(text), "\n", 2)
	if len(lines) < 2 {
		return strings.TrimSpace(text), ""
	}
	return strings.TrimSpace(lines[0]), strings.TrimSpace(lines[1])
}

// TruncateTitle collapses whitespace and cuts the title down to 200
// characters, ellipsized.
func TruncateTitle(title string) string {
	clean := whitespace.ReplaceAllString(strings.TrimSpace(title), " ")

	runes := []rune(clean)
	if len(runes) > maxTitleLen {
		return string(runes[:maxTitleLen-3]) + "..."
	}
	return clean
}

func fallbackInsight() (string, string) {
	title := "Essential Financial Wellness Tips"
	content := `Key Financial Management Principles:
1. Budgeting Fundamentals
   - Track income and expenses regularly
   - Follow the 50/30/20 rule (needs/wants/savings)
   - Review and adjust budget monthly

2. Smart Saving Strategies
   - Build emergency fund (3-6 months expenses)
   - Automate savings transfers
   - Look for high-yield savings accounts

3. Debt Management
   - Prioritize high-interest debt repayment
   - Consider debt consolidation options
   - Maintain good credit score

4. Investment Basics
   - Diversify investment portfolio
   - Start retirement planning early
   - Consider low-cost index funds

Remember: Financial stability comes from consistent habits and informed decisions.`
	return title, content
}
