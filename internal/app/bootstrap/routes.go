// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	chatfeature "github.com/skillswaphq/skillswap/internal/app/features/chat"
	directoryfeature "github.com/skillswaphq/skillswap/internal/app/features/directory"
	exchangefeature "github.com/skillswaphq/skillswap/internal/app/features/exchange"
	healthfeature "github.com/skillswaphq/skillswap/internal/app/features/health"
	channelstore "github.com/skillswaphq/skillswap/internal/app/store/channels"
	memberstore "github.com/skillswaphq/skillswap/internal/app/store/members"
	messagestore "github.com/skillswaphq/skillswap/internal/app/store/messages"
	requeststore "github.com/skillswaphq/skillswap/internal/app/store/requests"
	sessionstore "github.com/skillswaphq/skillswap/internal/app/store/sessions"
	"github.com/skillswaphq/skillswap/internal/app/system/auth"
	"github.com/skillswaphq/skillswap/internal/app/system/hub"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. The stores are wired here once
// and shared by every feature; the exchange core is the store layer,
// the features are a thin JSON surface over it.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	authMgr, err := auth.NewManager(appCfg.TokenKey, appCfg.SessionKey, appCfg.SessionName, secure, logger)
	if err != nil {
		logger.Error("auth manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	members := memberstore.New(db)
	sessions := sessionstore.New(db)
	requests := requeststore.New(db, members, sessions, logger)
	channels := channelstore.New(db)
	messages := messagestore.New(db, channels, hub.New(logger))

	r := chi.NewRouter()

	if len(appCfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   appCfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Global auth middleware: loads the member into context when the
	// request carries a valid credential. RequireMember gates the
	// authenticated surface below.
	r.Use(authMgr.LoadMember)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	directoryHandler := directoryfeature.NewHandler(members, logger)
	exchangeHandler := exchangefeature.NewHandler(requests, sessions, logger)
	chatHandler := chatfeature.NewHandler(channels, messages, logger)

	// The taxonomy is public; everything else requires a member.
	r.Get("/skills", directoryHandler.ServeSkills)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireMember)
		r.Mount("/members", directoryfeature.Routes(directoryHandler))
		r.Mount("/exchanges", exchangefeature.Routes(exchangeHandler))
		r.Get("/sessions", exchangeHandler.ServeSessions)
		r.Mount("/chat", chatfeature.Routes(chatHandler))
	})

	return r, nil
}
