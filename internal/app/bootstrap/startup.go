// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	memberstore "github.com/skillswaphq/skillswap/internal/app/store/members"
	requeststore "github.com/skillswaphq/skillswap/internal/app/store/requests"
	sessionstore "github.com/skillswaphq/skillswap/internal/app/store/sessions"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
//
// The one task here is the session recovery pass: any request left
// accepted without a session (a crash between the status flip and the
// session insert on a deployment without transactions) gets its session
// opened now, restoring the "accepted implies session" invariant before
// traffic arrives.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase
	requests := requeststore.New(db, memberstore.New(db), sessionstore.New(db), logger)
	return requests.RecoverSessions(ctx)
}
