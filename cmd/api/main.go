package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-dataroom-api/internal/config"
	"github.com/go-dataroom-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-dataroom-api/internal/infrastructure/jwt"
	s3infra "github.com/go-dataroom-api/internal/infrastructure/s3"
	"github.com/go-dataroom-api/internal/infrastructure/smtp"
	"github.com/go-dataroom-api/internal/infrastructure/sns"
	transporthttp "github.com/go-dataroom-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	var passwordKey []byte
	if cfg.PasswordSecret != "" {
		passwordKey, err = hex.DecodeString(cfg.PasswordSecret)
		if err != nil {
			log.Fatalf("PASSWORD_SECRET is not valid hex: %v", err)
		}
	}

	// S3-backed content resolver.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)
	resolver := s3infra.NewResolver(s3Store, time.Duration(cfg.ContentURLTTLMinutes)*time.Minute)

	// SMTP mailer for one-time codes.
	mailer := smtp.NewMailer(cfg)

	// SNS event publisher (optional — graceful fallback).
	var publisher sns.Publisher
	if p, err := sns.NewPublisher(cfg); err == nil {
		publisher = p
	} else {
		log.Printf("WARN: SNS publisher not available, events will be dropped: %v", err)
		publisher = sns.NopPublisher{}
	}

	deps := &transporthttp.Deps{
		LinkRepo:         dynamo.NewLinkRepo(dynamoClient, cfg.DynamoTables.Links),
		TeamRepo:         dynamo.NewTeamRepo(dynamoClient, cfg.DynamoTables.Teams),
		DocumentRepo:     dynamo.NewDocumentRepo(dynamoClient, cfg.DynamoTables.Documents),
		ViewerRepo:       dynamo.NewViewerRepo(dynamoClient, cfg.DynamoTables.Viewers),
		ViewRepo:         dynamo.NewViewRepo(dynamoClient, cfg.DynamoTables.Views),
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.LinkVerifications),
		Mailer:           mailer,
		Publisher:        publisher,
		Resolver:         resolver,
		JWTProvider:      jwtProvider,
		PasswordKey:      passwordKey,
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
