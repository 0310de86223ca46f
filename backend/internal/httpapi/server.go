package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tsunagu/backend/internal/directory"
	"tsunagu/backend/internal/friends"
	"tsunagu/backend/internal/messaging"
	"tsunagu/backend/internal/ratelimit"
	"tsunagu/backend/pkg/config"
	"tsunagu/backend/pkg/logger"
)

// Server wires the domain components behind the HTTP API
type Server struct {
	directory *directory.Directory
	friends   *friends.Engine
	messaging *messaging.Gate
	logger    *zap.Logger
}

// NewServer creates the HTTP API server
func NewServer(dir *directory.Directory, engine *friends.Engine, gate *messaging.Gate) *Server {
	return &Server{
		directory: dir,
		friends:   engine,
		messaging: gate,
		logger:    logger.Get(),
	}
}

// NewRouter builds the gin engine with middleware and all routes
func NewRouter(cfg *config.Config, srv *Server, identity Identity, limiter *ratelimit.Limiter) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RequestLogger(logger.Get()))
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// User provisioning is called by the external identity provider's
	// login callback, before the user has a graph record.
	router.POST("/api/users", srv.provisionUser)

	api := router.Group("/api")
	api.Use(RequireAuth(identity))
	{
		api.GET("/users/me", srv.getCurrentUser)
		api.PATCH("/users/me/profile", srv.updateProfile)
		api.PATCH("/users/me/settings", srv.updateMessageSettings)
		api.GET("/users/search", srv.searchUsers)

		api.GET("/friends", srv.listFriends)
		api.DELETE("/friends/:userId", srv.removeFriend)
		api.GET("/friends/mutual/:userId", srv.listMutualFriends)
		api.GET("/friends/map", srv.getConnectionMap)

		api.POST("/friends/requests", srv.sendFriendRequest)
		api.GET("/friends/requests/received", srv.listReceivedRequests)
		api.GET("/friends/requests/sent", srv.listSentRequests)
		api.POST("/friends/requests/:id/accept",
			RateLimit(limiter, "accept-friend-request"), srv.acceptFriendRequest)
		api.POST("/friends/requests/:id/reject", srv.rejectFriendRequest)

		api.POST("/messages", srv.sendMessage)
		api.GET("/conversations", srv.listConversations)
		api.GET("/messages/:userId", srv.listMessages)
		api.POST("/messages/:id/read", srv.markMessageRead)

		api.GET("/blocks", srv.listBlockedUsers)
		api.POST("/blocks/:userId", srv.blockUser)
		api.DELETE("/blocks/:userId", srv.unblockUser)
	}

	return router
}
