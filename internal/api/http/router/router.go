package router

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dtroode/farmgate-identity/internal/api/http/handler"
	"github.com/dtroode/farmgate-identity/internal/api/http/middleware"
	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
)

// Options holds transport settings of the HTTP API.
type Options struct {
	Production     bool
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Router assembles the public HTTP API.
type Router struct {
	verification   handler.VerificationService
	auth           handler.AuthService
	guard          middleware.Guard
	contextManager model.ContextManager
	opts           Options
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	verification handler.VerificationService,
	auth handler.AuthService,
	guard middleware.Guard,
	contextManager model.ContextManager,
	opts Options,
	logger *logger.Logger,
) *Router {
	return &Router{
		verification:   verification,
		auth:           auth,
		guard:          guard,
		contextManager: contextManager,
		opts:           opts,
		logger:         logger,
	}
}

// Register builds the handler tree with logging, CORS, timeouts and tracing.
func (r *Router) Register() http.Handler {
	mux := http.NewServeMux()
	r.registerAuthRoutes(mux)
	r.registerAdminRoutes(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	var h http.Handler = mux
	h = middleware.Timeout(r.opts.RequestTimeout)(h)
	h = middleware.Recover(r.logger)(h)
	h = middleware.NewCORS(r.opts.AllowedOrigins).Handle(h)
	h = middleware.NewLogging(r.logger).Handle(h)

	return otelhttp.NewHandler(h, "farmgate-identity",
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
	)
}

func (r *Router) registerAuthRoutes(mux *http.ServeMux) {
	cookies := handler.NewCookies(r.opts.Production)
	auth := handler.NewAuth(r.verification, r.auth, cookies, r.contextManager, r.logger)
	authenticate := middleware.NewAuthenticate(r.guard, r.contextManager, r.logger)

	mux.HandleFunc("POST /api/auth/signup", auth.Signup)
	mux.HandleFunc("POST /api/auth/verify/send", auth.SendVerification)
	mux.HandleFunc("POST /api/auth/verify/receive", auth.ReceiveVerification)
	mux.HandleFunc("POST /api/auth/verify/cancel", auth.CancelVerification)
	mux.HandleFunc("POST /api/auth/login", auth.Login)
	mux.HandleFunc("POST /api/auth/refresh-token", auth.RefreshToken)
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)
	mux.Handle("GET /api/auth/profile", authenticate.Handle(http.HandlerFunc(auth.Profile)))
}

func (r *Router) registerAdminRoutes(mux *http.ServeMux) {
	admin := handler.NewAdmin(r.auth, r.logger)
	authenticate := middleware.NewAuthenticate(r.guard, r.contextManager, r.logger)
	adminOnly := authenticate.RequireRole(model.RoleAdmin)

	mux.Handle("GET /api/admin/identities/{id}",
		authenticate.Handle(adminOnly(http.HandlerFunc(admin.Identity))))
}
