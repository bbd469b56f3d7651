package server

import (
	"fmt"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"finpulse/internal/auth"
	"finpulse/internal/cache"
	"finpulse/internal/database"
	"finpulse/internal/insight"
	"finpulse/internal/model"
)

// cacheTTL is the expiry for every cached aggregate the handlers keep.
const cacheTTL = cache.DefaultTTL

type Server struct {
	port int

	debug        bool
	allowedHosts []string
	cliSecret    string

	currencyAPIKey  string
	currencyAPIHost string

	db       database.Service
	cache    cache.Cache
	tokens   *auth.TokenIssuer
	insights *insight.Generator
}

func NewServer(config model.Config, db database.Service) *http.Server {
	newServer := &Server{
		port: config.Port,

		debug:        config.Debug,
		allowedHosts: config.AllowedHosts,
		cliSecret:    config.CLISecret,

		currencyAPIKey:  config.CurrencyAPIKey,
		currencyAPIHost: config.CurrencyAPIHost,

		db:       db,
		cache:    cache.New(config.RedisAddr, config.RedisPassword),
		tokens:   auth.NewTokenIssuer(config.JWTSecret),
		insights: insight.NewGenerator(db, config.GeminiAPIKey),
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", newServer.port),
		Handler:      newServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
