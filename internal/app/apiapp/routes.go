package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/config"
	otpsvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/otp"
	sessionsvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/session"
	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/transport/http/handlers"
)

type Dependencies struct {
	SessionService *sessionsvc.Service
	OTPService     *otpsvc.Service
	Logger         *zap.Logger
	Config         config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.SessionService)
	otpHandler := handlers.NewOTPHandler(deps.OTPService)
	healthHandler := handlers.NewHealthHandler()

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
		})
		r.Route("/otp", func(r chi.Router) {
			r.Post("/generate", otpHandler.Generate)
			r.Post("/validate", otpHandler.Validate)
		})
	})
}
