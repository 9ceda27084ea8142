package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/marabinga/passport-dc/internal/portal/metrics"
	"github.com/marabinga/passport-dc/internal/portal/service"
	"github.com/marabinga/passport-dc/internal/portal/store"
	"github.com/marabinga/passport-dc/pkg/discord"
	"github.com/marabinga/passport-dc/pkg/httpx"
	"github.com/marabinga/passport-dc/pkg/jwtx"
	"github.com/marabinga/passport-dc/pkg/oauth2x"
	"github.com/marabinga/passport-dc/pkg/slogx"

	_ "github.com/marabinga/passport-dc/api/portal" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	metrics      *metrics.Metrics

	// Cookie settings for the session cookie.
	CookieName    string
	SecureCookies bool

	Engine         *oauth2x.Engine[*discord.Profile]
	LoginService   *service.LoginService
	SessionService *service.SessionService
	UserService    *service.UserService
	GuildService   *service.GuildService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		logger:       logger,
		CookieName:   httpx.DefaultSessionCookie,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerGuilds()
	r.registerSystem()

	r.Mux.Handle("/swagger/",
		httpx.Chain(httpSwagger.Handler(),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Passport Discord Portal API
//	@version		0.1.0
//	@description	Signs users in with Discord OAuth2, keeps their profile and can add them to a guild.
//	@description
//	@description	Sessions are carried in an HS256 signed cookie issued by the login callback.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						passport_session
//	@description				Session token set by /auth/discord/callback.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) session() httpx.Middleware {
	var checker httpx.SessionChecker
	if r.SessionService != nil {
		checker = r.SessionService
	}
	return httpx.SessionAuth(r.verifier, r.CookieName, checker)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Engine:         r.Engine,
		Verifier:       r.verifier,
		LoginService:   r.LoginService,
		SessionService: r.SessionService,
		Metrics:        r.metrics,
		CookieName:     r.CookieName,
		SecureCookies:  r.SecureCookies,
	}

	r.Mux.Handle("GET /{$}",
		httpx.Chain(http.HandlerFunc(HandleIndex),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// Login routes are limited per IP; they are the unauthenticated entry points.
	r.Mux.Handle("GET /auth/discord",
		httpx.Chain(http.HandlerFunc(h.HandleBegin),
			httpx.RateLimitByIP(httpx.LoginLimit),
		),
	)
	r.Mux.Handle("GET /auth/discord/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.LoginLimit),
		),
	)

	r.Mux.Handle("POST /logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.LoginLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &MeHandler{
		UserService:    r.UserService,
		SessionService: r.SessionService,
	}

	r.Mux.Handle("GET /v1/me",
		httpx.Chain(h,
			r.session(),
			httpx.RateLimitByUser(httpx.APILimit),
		),
	)
}

func (r *Router) registerGuilds() {
	h := &GuildHandler{
		GuildService: r.GuildService,
		UserService:  r.UserService,
	}

	// Joining calls Discord with the bot token, so it gets the tightest limit.
	r.Mux.Handle("POST /v1/guilds/join",
		httpx.Chain(http.HandlerFunc(h.HandleJoin),
			r.session(),
			httpx.RequireScopes(discord.ScopeGuildsJoin),
			httpx.RateLimitByUser(httpx.JoinLimit),
		),
	)
	r.Mux.Handle("GET /v1/guilds/joins",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.session(),
			httpx.RateLimitByUser(httpx.APILimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	guildJoinEnabled := r.GuildService != nil && r.GuildService.Enabled()
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, guildJoinEnabled),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	r.Mux.Handle("GET /metrics",
		httpx.Chain(r.metrics.Handler(),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
