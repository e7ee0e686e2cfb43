// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridenow/internal/http/middleware"
	"ridenow/internal/modules/identity"
	"ridenow/internal/modules/matching"
	"ridenow/internal/modules/rating"
	"ridenow/internal/modules/ride"
	"ridenow/internal/modules/wallet"
)

type ServerDeps struct {
	Identity *identity.Service
	Rides    *ride.Service
	Matching *matching.Service
	Wallets  *wallet.Service
	Ratings  *rating.Service
	Verifier middleware.TokenVerifier
	Logger   *slog.Logger
}

type Server struct {
	auth    *AuthHandler
	rides   *RideHandler
	drivers *DriverHandler
	wallets *WalletHandler

	verifier middleware.TokenVerifier
	log      *slog.Logger
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		auth:     NewAuthHandler(deps.Identity),
		rides:    NewRideHandler(deps.Rides, deps.Identity, deps.Ratings),
		drivers:  NewDriverHandler(deps.Identity, deps.Matching),
		wallets:  NewWalletHandler(deps.Wallets),
		verifier: deps.Verifier,
		log:      deps.Logger,
	}
}

func (s *Server) Routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(s.log), middleware.Logging(s.log), middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", s.auth.Signup)
	authGroup.POST("/login", s.auth.Login)
	authGroup.POST("/refresh", s.auth.Refresh)

	authed := authGroup.Group("", middleware.Auth(s.verifier))
	authed.GET("/user", s.auth.GetUser)
	authed.GET("/roles", s.auth.GetRoles)
	authed.POST("/onBoardNewDriver/:userId",
		middleware.RequireRole(string(identity.RoleAdmin)), s.auth.OnboardDriver)

	rides := api.Group("/rides", middleware.Auth(s.verifier))
	rides.POST("/request", middleware.RequireRole(string(identity.RoleRider)), s.rides.Request)
	rides.GET("/rider", middleware.RequireRole(string(identity.RoleRider)), s.rides.RiderHistory)
	rides.GET("/driver", middleware.RequireRole(string(identity.RoleDriver)), s.rides.DriverHistory)
	rides.POST("/requests/:id/accept", middleware.RequireRole(string(identity.RoleDriver)), s.rides.Accept)
	rides.GET("/:id", s.rides.Get)
	rides.POST("/:id/start", middleware.RequireRole(string(identity.RoleDriver)), s.rides.Start)
	rides.POST("/:id/end", middleware.RequireRole(string(identity.RoleDriver)), s.rides.End)
	rides.POST("/:id/cancel", s.rides.Cancel)
	rides.POST("/:id/rate-driver", middleware.RequireRole(string(identity.RoleRider)), s.rides.RateDriver)
	rides.POST("/:id/rate-rider", middleware.RequireRole(string(identity.RoleDriver)), s.rides.RateRider)

	drivers := api.Group("/drivers",
		middleware.Auth(s.verifier), middleware.RequireRole(string(identity.RoleDriver)))
	drivers.PUT("/availability", s.drivers.SetAvailability)
	drivers.PUT("/location", s.drivers.UpdateLocation)

	walletGroup := api.Group("/wallet", middleware.Auth(s.verifier))
	walletGroup.GET("", s.wallets.Get)
	walletGroup.GET("/transactions", s.wallets.Transactions)

	return r
}
