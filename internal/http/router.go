package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/strafezone/portal/gameserver-service/internal/config"
	"github.com/strafezone/portal/gameserver-service/internal/service"
)

// RateLimiter is a simple in-memory sliding-window limiter
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// Allow reports whether the key may make another request
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.window)

	var valid []time.Time
	for _, t := range rl.requests[key] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

// RateLimitMiddleware limits by identity when authenticated, IP otherwise
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("steamID")
		if key == "" {
			key = c.ClientIP()
		}

		if !rl.Allow(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, please try again later",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

type Server struct {
	router  *gin.Engine
	handler *Handler
	admin   *AdminHandler
	cfg     *config.Config
}

// User API limit: 30 requests per minute per identity
var userRateLimiter = NewRateLimiter(30, time.Minute)

// Create limit: 5 per hour per identity. One active server per owner is
// a business rule anyway; 5 covers retries after failed spawns.
var createRateLimiter = NewRateLimiter(5, time.Hour)

func NewServer(cfg *config.Config, instanceService *service.InstanceService, adminService *service.AdminService, reaper *service.Reaper) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:  router,
		handler: NewHandler(instanceService),
		admin:   NewAdminHandler(adminService, reaper),
		cfg:     cfg,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "gameserver-service",
		})
	})

	// User API - requires portal JWT
	user := s.router.Group("/api/v1")
	user.Use(JWTAuthMiddleware(s.cfg.JWT.SecretKey))
	user.Use(RateLimitMiddleware(userRateLimiter))
	{
		// Creating a server is expensive; stricter limit
		user.POST("/my/server", RateLimitMiddleware(createRateLimiter), s.handler.CreateInstance)
		user.GET("/my/server/:id", s.handler.GetInstance)
		user.DELETE("/my/server/:id", s.handler.TerminateInstance)
		user.GET("/my/servers", s.handler.ListMyInstances)
	}

	// Public API - live scoreboard widgets poll this, no auth
	public := s.router.Group("/api/v1/public")
	{
		public.GET("/servers/:id/status", s.handler.InstanceStatus)
	}

	// Internal API - called by the portal backend
	internal := s.router.Group("/api/internal")
	internal.Use(InternalAuthMiddleware(s.cfg.InternalSecret))
	{
		internal.POST("/lobbies", s.handler.CreateLobby)
		internal.DELETE("/lobbies/:id", s.handler.DeleteLobby)
	}

	// Admin API - host and credential management
	admin := s.router.Group("/api/admin")
	admin.Use(AdminAuthMiddleware(s.cfg.AdminAPIKey))
	{
		admin.GET("/hosts", s.admin.ListHosts)
		admin.POST("/hosts", s.admin.CreateHost)
		admin.PUT("/hosts/:id", s.admin.UpdateHost)
		admin.DELETE("/hosts/:id", s.admin.DeleteHost)

		admin.GET("/credentials", s.admin.ListCredentials)
		admin.POST("/credentials", s.admin.CreateCredential)
		admin.PUT("/credentials/:id/active", s.admin.SetCredentialActive)
		admin.DELETE("/credentials/:id", s.admin.DeleteCredential)

		admin.GET("/instances/:id/logs", s.admin.InstanceLogs)
		admin.POST("/reap", s.admin.TriggerReap)
	}
}

// Run starts the HTTP server
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
