package server

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pokerhub/internal/auth"
	"pokerhub/internal/db"
	"pokerhub/internal/eligibility"
	"pokerhub/internal/locks"
	"pokerhub/internal/middleware"
	"pokerhub/internal/store"
	"pokerhub/internal/tournament"
)

const tableLockTTL = 10 * time.Second

// Server wires the HTTP API, the WebSocket hub and the background
// schedulers over the shared store. Multiple instances can run against the
// same Redis; per-table and per-tournament locks keep them from stepping
// on each other.
type Server struct {
	store       store.Store
	locker      locks.Locker
	auth        *auth.Service
	database    *db.DB
	tournaments *tournament.Service
	hub         *Hub
	limiter     *middleware.RateLimiter
	logger      *log.Logger
}

func New(st store.Store, locker locks.Locker, authSvc *auth.Service, database *db.DB, tournaments *tournament.Service, logger *log.Logger) *Server {
	s := &Server{
		store:       st,
		locker:      locker,
		auth:        authSvc,
		database:    database,
		tournaments: tournaments,
		limiter:     middleware.NewRateLimiter(10, 20, logger),
		logger:      logger.With("component", "server"),
	}
	s.hub = NewHub(s, logger)
	return s
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(s.limiter.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/register", s.handleRegister)
		api.POST("/auth/login", s.handleLogin)
		api.POST("/auth/guest", s.handleGuest)

		authed := api.Group("")
		authed.Use(s.authMiddleware())
		{
			authed.GET("/auth/me", s.handleMe)

			authed.POST("/tables", s.handleCreateTable)
			authed.GET("/tables", s.handleListTables)
			authed.GET("/tables/:id", s.handleGetTable)
			authed.POST("/tables/:id/join", s.handleJoinTable)
			authed.POST("/tables/:id/leave", s.handleLeaveTable)
			authed.POST("/tables/:id/start", s.handleStartTable)
			authed.POST("/tables/:id/action", s.handleAction)
			authed.POST("/tables/:id/next-hand", s.handleNextHand)

			authed.POST("/tournaments", s.handleCreateTournament)
			authed.GET("/tournaments", s.handleListTournaments)
			authed.GET("/tournaments/:id", s.handleGetTournament)
			authed.POST("/tournaments/:id/register", s.handleRegisterTournament)
			authed.POST("/tournaments/:id/start", s.handleStartTournament)
			authed.GET("/tournaments/:id/standings", s.handleStandings)
			authed.GET("/tournaments/:id/results", s.handleResults)
			authed.GET("/tournaments/:id/move", s.handlePendingMove)

			authed.GET("/players/me/history", s.handlePlayerHistory)
		}
	}

	r.GET("/ws", s.hub.HandleUpgrade)
	return r
}

// Close stops the background pieces owned by the server.
func (s *Server) Close() {
	s.limiter.Stop()
}

// balanceLookup exposes the archive's balance column to eligibility rules.
// Without a database, minimum-balance gates simply do not apply.
func (s *Server) balanceLookup() eligibility.BalanceFunc {
	if s.database == nil {
		return nil
	}
	return s.database.Balance
}
