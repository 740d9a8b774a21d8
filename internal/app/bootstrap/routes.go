// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	dashboardfeature "github.com/CherdHall/PlotForge/internal/app/features/dashboard"
	errorsfeature "github.com/CherdHall/PlotForge/internal/app/features/errors"
	healthfeature "github.com/CherdHall/PlotForge/internal/app/features/health"
	homefeature "github.com/CherdHall/PlotForge/internal/app/features/home"
	loginfeature "github.com/CherdHall/PlotForge/internal/app/features/login"
	logoutfeature "github.com/CherdHall/PlotForge/internal/app/features/logout"
	proposalsfeature "github.com/CherdHall/PlotForge/internal/app/features/proposals"
	registerfeature "github.com/CherdHall/PlotForge/internal/app/features/register"
	threadsfeature "github.com/CherdHall/PlotForge/internal/app/features/threads"
	workspacesfeature "github.com/CherdHall/PlotForge/internal/app/features/workspaces"
	"github.com/CherdHall/PlotForge/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. It creates the session manager,
// boots the template engine, and mounts a feature router per URL
// prefix.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Boot the template engine once at startup. Dev mode enables
	// template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged
	// in, making the current user available via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Accounts and sessions
	registerHandler := registerfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Signed-in home
	dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Recruitment
	proposalsHandler := proposalsfeature.NewHandler(deps.MongoClient, deps.MongoDatabase, errLog, logger)
	r.Mount("/proposals", proposalsfeature.Routes(proposalsHandler, sessionMgr))

	// Discussion threads
	threadsHandler := threadsfeature.NewHandler(deps.MongoClient, deps.MongoDatabase, errLog, logger)
	r.Mount("/threads", threadsfeature.Routes(threadsHandler, sessionMgr))

	// Private workspaces
	workspacesHandler := workspacesfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/workspace", workspacesfeature.Routes(workspacesHandler, sessionMgr))
	r.Mount("/my-workspaces", workspacesfeature.MyWorkspacesRoutes(workspacesHandler, sessionMgr))

	return r, nil
}
