// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/inkwell-live/inkwell/internal/app/broker"
	accountsfeature "github.com/inkwell-live/inkwell/internal/app/features/accounts"
	healthfeature "github.com/inkwell-live/inkwell/internal/app/features/health"
	sessionsfeature "github.com/inkwell-live/inkwell/internal/app/features/sessions"
	sessionstore "github.com/inkwell-live/inkwell/internal/app/store/sessions"
	"github.com/inkwell-live/inkwell/internal/app/store/tokens"
	userstore "github.com/inkwell-live/inkwell/internal/app/store/users"
	"github.com/inkwell-live/inkwell/internal/app/system/apierr"
	"github.com/inkwell-live/inkwell/internal/app/system/auth"
	"github.com/inkwell-live/inkwell/internal/app/system/ratelimit"
	"github.com/inkwell-live/inkwell/internal/app/system/token"
	"go.uber.org/zap"
)

// liveHub is the connection broker built in BuildHandler; Shutdown
// drains it before the Mongo client disconnects.
var liveHub *broker.Hub

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. inkwell mounts three surfaces:
// the health endpoint, the JSON API (signup/signin and the session
// lifecycle), and the websocket entry point for the room broker.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	users := userstore.New(db)
	sessions := sessionstore.New(db)
	tokenSvc := token.NewService(tokens.New(db), appCfg.TokenTTL)

	api := apierr.NewLogger(logger)
	authMW := auth.NewMiddleware(tokenSvc, users, logger)
	signinLimiter := ratelimit.New(appCfg.SigninRateLimit, appCfg.SigninRateWindow)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Account endpoints: signup and signin (token issuance)
	accountsHandler := accountsfeature.NewHandler(users, tokenSvc, api, signinLimiter, appCfg.BcryptCost, logger)
	r.Mount("/api", accountsfeature.Routes(accountsHandler))

	// Session lifecycle API, bearer-token protected
	sessionsHandler := sessionsfeature.NewHandler(sessions, api, logger)
	r.Mount("/api/sessions", sessionsfeature.Routes(sessionsHandler, authMW))

	// Websocket entry point for the room broker. The token is checked
	// before the upgrade, so bad credentials get a plain 401.
	hub := broker.New(authMW, sessions, logger)
	liveHub = hub
	r.Get("/ws", hub.ServeWS)

	return r, nil
}
