package server

import (
	"net/http"
	"os"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"

	"github.com/askhq/ask/internal/logging"
	"github.com/askhq/ask/metrics"
)

// GenerateRoutes constructs a http.Handler for the primary http server.
// The handler includes gin middleware, the page routes, and the static files.
//
// The order of routes in this function is important! Gin saves a route along
// with all the middleware that will apply to the route when the
// Router.{GET,POST,etc} method is called.
//
// GenerateRoutes registers the request metrics with the server registry, so
// it can only be called once for each Server.
func (s *Server) GenerateRoutes() http.Handler {
	p := &pages{db: s.db, auth: s.auth}

	router := gin.New()
	router.SetHTMLTemplate(loadTemplates())
	router.NoRoute(p.notFound)

	router.Use(RecoveryMiddleware(s.sentryHub))
	router.GET("/healthz", healthHandler)

	// This group of middleware will apply to everything, including static files
	router.Use(
		logging.Middleware(s.options.EnableLogSampling),
		TimeoutMiddleware(s.options.RequestTimeout),
		metrics.Middleware(s.metricsRegistry),
		gzip.Gzip(gzip.DefaultCompression),
	)
	router.Use(static.Serve("/static", StaticFileSystem{base: http.FS(staticFiles)}))
	router.Use(AuthenticationMiddleware(s.auth))

	router.GET("/", p.home)

	router.GET("/register", p.registerPage)
	router.POST("/register", p.register)
	router.GET("/login", p.loginPage)
	router.POST("/login", p.login)
	router.GET("/forgot", p.forgotPage)
	router.POST("/forgot", p.forgot)
	router.GET("/reset/:token", p.resetPage)
	router.POST("/reset/:token", p.reset)

	router.GET("/question/:id", p.question)
	router.POST("/question/:id", p.answer)

	authn := router.Group("/", RequireLogin(s.auth))
	authn.GET("/logout", p.logout)
	authn.GET("/ask", p.askPage)
	authn.POST("/ask", p.ask)

	if s.options.TrustProxyHeaders {
		return handlers.ProxyHeaders(router)
	}
	return router
}

// setGinMode from the GIN_MODE environment variable. Unlike the init function
// in gin, this function defaults to ReleaseMode when the environment variable
// has no value.
func setGinMode() {
	mode := os.Getenv(gin.EnvGinMode)
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
}
