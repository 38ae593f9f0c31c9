package routes

import (
	"net/http"

	"github.com/caredocs/caredocs/internal/app"
	"github.com/caredocs/caredocs/internal/handler"
	"github.com/caredocs/caredocs/internal/middleware"
	"github.com/caredocs/caredocs/internal/model"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.UserService)
	documents := handler.NewDocumentHandler(app.DocumentService, app.Cfg.MaxUploadSize)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)

	// Auth (rate limited, shared through Redis when configured)
	rateLimiter := middleware.RateLimit(app.LoginLimiter)

	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(auth.Me))
	mux.HandleFunc("POST /api/account/password", middleware.RequireAuth(auth.ChangePassword))

	// Documents
	mux.HandleFunc("GET /api/documents", middleware.RequireAuth(documents.List))
	mux.HandleFunc("GET /api/documents/{id}/file", documents.File)
	mux.HandleFunc("POST /api/documents", middleware.RequireRole(model.RoleAdmin)(documents.Create))
	mux.HandleFunc("POST /api/documents/{id}/sign", middleware.RequireAuth(documents.Sign))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RealIP(app.Cfg.TrustedProxies),
		middleware.RequestID,
		middleware.SecurityHeaders,
		middleware.CSRFProtection(),
		middleware.AuthMiddleware(app.AuthService),
		middleware.RequestLogging, // After auth so the caller is logged
	)

	return handler
}
