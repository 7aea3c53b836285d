package handlers

import (
	"html/template"
	"net/http"
	"time"

	"myblog/internal/logger"
	"myblog/internal/service"
	"myblog/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Config holds the HTTP-layer settings taken from configuration.
type Config struct {
	// RequireSession gates /create, /edit and /delete behind a login.
	RequireSession bool
	CookieSecure   bool
	SessionTTL     time.Duration
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	cfg      Config
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, cfg Config, log *logger.Logger) *Handler {
	return &Handler{services: services, cfg: cfg, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.metricsMiddleware, h.sessionMiddleware)
	router.SetHTMLTemplate(template.Must(web.Templates()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", h.health)

	h.registerPostRoutes(router)
	h.registerAuthRoutes(router)

	router.GET("/uploads/:filename", h.uploadedFile)
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerPostRoutes(r *gin.Engine) {
	r.GET("/", h.index)

	posts := r.Group("/", h.requireSession)
	{
		posts.GET("/create", h.createForm)
		posts.POST("/create", h.createPost)
		posts.GET("/edit/:id", h.editForm)
		posts.POST("/edit/:id", h.editPost)
		posts.GET("/delete/:id", h.deletePost)
	}
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	r.GET("/signup", h.signupForm)
	r.POST("/signup", h.signUp)
	r.GET("/login", h.loginForm)
	r.POST("/login", h.logIn)
	r.GET("/logout", h.logOut)
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
