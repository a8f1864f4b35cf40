package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cartside/cartside/internal/auth/service"
	"github.com/cartside/cartside/internal/auth/session"
	"github.com/cartside/cartside/internal/auth/store"
	"github.com/cartside/cartside/pkg/cachex"
	"github.com/cartside/cartside/pkg/httpx"
	"github.com/cartside/cartside/pkg/jwtx"
	"github.com/cartside/cartside/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	blacklist    *session.Blacklist
	cookies      CookieConfig
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	cache *cachex.Client

	AuthService *service.AuthService
	OTPService  *service.OTPService
}

func NewRouter(
	codec *jwtx.Codec,
	blacklist *session.Blacklist,
	cookies CookieConfig,
	buildVersion string,
	st store.Store,
	cache *cachex.Client,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		blacklist:    blacklist,
		cookies:      cookies,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		cache:        cache,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// Credential endpoints take the strict per-IP limit; they are the
	// ones worth brute-forcing.
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(&RegisterHandler{Auth: r.AuthService, Cookies: r.cookies},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(&LoginHandler{Auth: r.AuthService, Cookies: r.cookies},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /v1/auth/admin/login",
		httpx.Chain(&LoginHandler{Auth: r.AuthService, Cookies: r.cookies, Admin: true},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /v1/auth/otp/request",
		httpx.Chain(&OTPRequestHandler{OTP: r.OTPService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /v1/auth/otp/login",
		httpx.Chain(&OTPLoginHandler{OTP: r.OTPService, Cookies: r.cookies},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))

	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(&RefreshHandler{Auth: r.AuthService, Cookies: r.cookies},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		))
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(&LogoutHandler{Auth: r.AuthService, Cookies: r.cookies},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		))

	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(&MeHandler{Store: r.store},
			httpx.RateLimitByIP(httpx.LenientLimit),
			Authenticate(r.codec, r.blacklist),
		))
}

func (r *Router) registerAdmin() {
	r.Mux.Handle("GET /v1/admin/users",
		httpx.Chain(&UsersHandler{Store: r.store},
			httpx.RateLimitByIP(httpx.ModerateLimit),
			AuthenticateAdmin(r.codec, r.blacklist),
			RequireAdmin(),
		))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cache))
}
