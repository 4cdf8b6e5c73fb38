package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-passwordless-api/internal/application/logincode"
	"github.com/go-passwordless-api/internal/config"
	"github.com/go-passwordless-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-passwordless-api/internal/infrastructure/jwt"
	"github.com/go-passwordless-api/internal/infrastructure/memory"
	"github.com/go-passwordless-api/internal/infrastructure/smtp"
	transporthttp "github.com/go-passwordless-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// The token provider is mandatory: without a signing secret the verify
	// endpoint could never establish a session, so refuse to start.
	tokenProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("session token provider: %v", err)
	}

	var codes logincode.CodeStore
	switch cfg.CodeStore {
	case "memory":
		if cfg.IsProduction() {
			log.Fatal("CODE_STORE=memory is not allowed in production")
		}
		log.Println("Using in-memory code store (single instance only)")
		codes = memory.NewCodeStore()
	default:
		// Bootstrap the DynamoDB table (creates it if it doesn't exist).
		dynamoClient := dynamo.NewClient(cfg)
		dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTableCodes)
		codes = dynamo.NewCodeRepo(dynamoClient, cfg.DynamoTableCodes)
	}

	deps := &transporthttp.Deps{
		Codes:  codes,
		Mailer: smtp.NewMailer(cfg),
		Tokens: tokenProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
