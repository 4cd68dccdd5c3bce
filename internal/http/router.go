package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yeoro/twogether/internal/service"
	"github.com/yeoro/twogether/internal/store"
	"github.com/yeoro/twogether/pkg/httpx"
	"github.com/yeoro/twogether/pkg/slogx"

	_ "github.com/yeoro/twogether/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	// FrontURL is where the OAuth callback sends the browser back to.
	FrontURL string

	SessionService *service.SessionService
	MemberService  *service.MemberService
	PairingService *service.PairingService
	OTCService     *service.OTCService
	OAuthService   *service.OAuthService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerOAuth()
	r.registerMembers()
	r.registerPartner()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Twogether Authentication API
//	@version		0.1.0
//	@description	Authentication and couple-pairing service for the twogether journal backend.
//	@description
//	@description				Access and refresh tokens are HS256 JWTs. The refresh token is the
//	@description				member's single active session; a new login displaces the old one.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	login := &LoginHandler{MemberService: r.MemberService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	refresh := &RefreshHandler{SessionService: r.SessionService}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refresh,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	logout := &LogoutHandler{SessionService: r.SessionService}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logout,
			AuthnMiddleware(r.SessionService),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// The one-time-code exchange carries a bearer-grade credential; limit it
	// like a login.
	token := &OTCExchangeHandler{OTCService: r.OTCService}
	r.Mux.Handle("POST /v1/auth/token",
		httpx.Chain(token,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerOAuth() {
	h := &OAuthHandler{OAuthService: r.OAuthService, FrontURL: r.FrontURL}

	r.Mux.Handle("GET /v1/oauth/kakao",
		httpx.Chain(http.HandlerFunc(h.HandleStart),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/oauth/kakao/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerMembers() {
	signup := &SignupHandler{MemberService: r.MemberService}
	r.Mux.Handle("POST /v1/members/signup",
		httpx.Chain(signup,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	me := &MeHandler{MemberService: r.MemberService}
	r.Mux.Handle("GET /v1/members/me",
		httpx.Chain(me,
			AuthnMiddleware(r.SessionService),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	password := &PasswordHandler{MemberService: r.MemberService}
	r.Mux.Handle("PUT /v1/members/password",
		httpx.Chain(password,
			AuthnMiddleware(r.SessionService),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerPartner() {
	h := &PartnerHandler{
		PairingService: r.PairingService,
		SessionService: r.SessionService,
	}

	r.Mux.Handle("POST /v1/partner/code",
		httpx.Chain(http.HandlerFunc(h.HandleGenerateCode),
			AuthnMiddleware(r.SessionService),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/partner/pair",
		httpx.Chain(http.HandlerFunc(h.HandlePair),
			AuthnMiddleware(r.SessionService),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/partner",
		httpx.Chain(http.HandlerFunc(h.HandleUnpair),
			AuthnMiddleware(r.SessionService),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.buildVersion, r.startTime))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
}
