package server

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

var currencyClient = &http.Client{Timeout: 10 * time.Second}

// convertCurrencyHandler proxies the configured exchange-rate API,
// defaulting to USD as the base currency.
func (s *Server) convertCurrencyHandler(c echo.Context) error {
	if s.currencyAPIHost == "" || s.currencyAPIKey == "" {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Currency conversion is not configured")
	}

	fromCurrency := c.QueryParam("from_currency")
	if fromCurrency == "" {
		fromCurrency = "USD"
	}

	url := fmt.Sprintf(
		"https://%s/api/v1/convert-rates/fiat/from?detailed=false&currency=%s",
		s.currencyAPIHost, fromCurrency,
	)

	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, url, nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}
	req.Header.Set("x-rapidapi-key", s.currencyAPIKey)
	req.Header.Set("x-rapidapi-host", s.currencyAPIHost)

	res, err := currencyClient.Do(req)
	if err != nil {
		log.Printf("Error fetching exchange rate: %v", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Could not fetch exchange rates")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		log.Printf("Exchange rate API returned status %d", res.StatusCode)
		return echo.NewHTTPError(http.StatusBadGateway, "Could not fetch exchange rates")
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Could not read exchange rates")
	}

	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
}
