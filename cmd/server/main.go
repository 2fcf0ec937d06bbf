package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"eventinvitations/config"
	_ "eventinvitations/docs"
	"eventinvitations/internal/adapters/auth"
	"eventinvitations/internal/adapters/email"
	"eventinvitations/internal/adapters/render"
	"eventinvitations/internal/adapters/whatsapp"
	delivery "eventinvitations/internal/delivery/http"
	"eventinvitations/internal/delivery/http/controllers"
	"eventinvitations/internal/delivery/http/middleware"
	"eventinvitations/internal/repository/postgres"
	"eventinvitations/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title Event Invitations API
// @version 1.0
// @description Backend for designing, dispatching, and tracking event invitations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mailer.Provider,
		FromAddress: cfg.Mailer.FromAddress,
		FromName:    cfg.Mailer.FromName,
		SES: email.SESConfig{
			Region:          cfg.Mailer.SESRegion,
			AccessKeyID:     cfg.Mailer.SESAccessKeyID,
			SecretAccessKey: cfg.Mailer.SESSecretAccessKey,
		},
	}, logger)
	if err != nil {
		log.Fatalf("create mailer: %v", err)
	}
	messenger, err := whatsapp.NewMessenger(whatsapp.MessengerConfig{
		Provider:   cfg.Twilio.Provider,
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		FromNumber: cfg.Twilio.FromNumber,
	}, logger)
	if err != nil {
		log.Fatalf("create messenger: %v", err)
	}

	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	renderer := render.NewRenderer()
	composer := services.NewMessageComposer(cfg.PublicBaseURL)

	userRepo := postgres.NewUserRepository(db)
	templateRepo := postgres.NewTemplateRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	confirmationRepo := postgres.NewConfirmationRepository(db)

	userService := services.NewUserService(userRepo, hasher, issuer, cfg.TokenExpiry)
	templateService := services.NewTemplateService(templateRepo, serviceTimeout)
	eventService := services.NewEventService(eventRepo, templateRepo, renderer, serviceTimeout)
	invitationService := services.NewInvitationService(
		invitationRepo, eventRepo, templateRepo, mailer, messenger, composer, serviceTimeout,
	)
	confirmationService := services.NewConfirmationService(
		confirmationRepo, invitationRepo, eventRepo, userRepo, mailer, logger, serviceTimeout,
	)

	router := delivery.NewRouter(delivery.Controllers{
		Auth:       controllers.NewAuthController(logger, userService),
		Template:   controllers.NewTemplateController(logger, templateService, userService),
		Event:      controllers.NewEventController(logger, eventService, confirmationService),
		Invitation: controllers.NewInvitationController(logger, invitationService),
		Public:     controllers.NewPublicController(logger, confirmationService),
	}, middleware.RequireAuth(verifier, logger))

	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, router))

	addr := ":" + cfg.Port
	logger.Info("server listening", "addr", addr, "env", cfg.Environment)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
