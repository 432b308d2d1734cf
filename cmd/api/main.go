package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-contactform-backend/config"
	_ "go-contactform-backend/docs" // Important for Swagger
	"go-contactform-backend/internal/composer"
	v1 "go-contactform-backend/internal/delivery/http/v1"
	"go-contactform-backend/internal/usecase"
	"go-contactform-backend/pkg/akismet"
	"go-contactform-backend/pkg/logger"
	"go-contactform-backend/pkg/mailer"
	"go-contactform-backend/pkg/recaptcha"
	"go-contactform-backend/pkg/redis"
	"go-contactform-backend/pkg/validation"
)

// @title           Contact Form Backend API
// @version         1.0
// @description     Public contact form backend: validates submissions and delivers them by email.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting contact form backend", "port", cfg.Port)

	// 3. Setup Redis (optional, rate limiting falls back to in-memory)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
		}
		defer redis.Close()
	}

	// 4. Setup Mail Transport
	transport := mailer.NewSMTPTransport(mailer.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.SMTPFromEmail,
	})
	if !transport.IsConfigured() {
		logger.Log.Warn("Mail transport not fully configured - contact form will be unavailable")
	}

	// 5. Setup Validator Extensions
	var extensions []composer.Extension
	if cfg.AkismetAPIKey != "" || cfg.AkismetSiteURL != "" {
		extensions = append(extensions, composer.NewSpamCheck(
			akismet.NewClient(cfg.AkismetAPIKey, cfg.AkismetSiteURL)))
		logger.Log.Info("Spam classification enabled")
	}
	if cfg.RecaptchaSiteKey != "" || cfg.RecaptchaSecretKey != "" {
		extensions = append(extensions, composer.NewChallenge(
			recaptcha.NewVerifier(cfg.RecaptchaSiteKey, cfg.RecaptchaSecretKey,
				recaptcha.WithLang(cfg.RecaptchaLang))))
		logger.Log.Info("Challenge verification enabled")
	}

	// 6. Setup UseCases
	contactUC := usecase.NewContactUsecase(composer.Config{
		Recipients:      cfg.ContactRecipients,
		SubjectTemplate: cfg.SubjectTemplate,
		BodyTemplate:    cfg.BodyTemplate,
		SiteName:        cfg.SiteName,
		Transport:       transport,
		Extensions:      extensions,
		Validate:        validation.New(),
	})

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC: contactUC,
		Config:    cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
