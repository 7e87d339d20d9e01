package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/telecare-api/internal/middleware"
	"github.com/harentsoaR/telecare-api/internal/models"
	"github.com/redis/go-redis/v9"
)

type RouterOptions struct {
	CORSOrigins []string
	// Redis backs the login and signup rate limiter. Nil disables it.
	Redis          redis.Cmdable
	LoginRateLimit int
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(h.Logger))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.AuthMiddleware(h.Codec, h.Resolver)
	usersOnly := middleware.RequireRoles(models.RoleUser)
	limit := middleware.RateLimiter(opts.Redis, opts.LoginRateLimit, time.Minute, "auth", h.Logger)

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", limit, h.Signup)
		authRoutes.POST("/login", limit, h.Login)
		authRoutes.POST("/refresh", h.Refresh)

		authRoutes.GET("/me", auth, h.Me)
		authRoutes.GET("/profile/:id", auth, h.GetProfile)
		authRoutes.PUT("/profile/:id", auth, h.UpdateProfile)
		authRoutes.PUT("/change-password", auth, h.ChangePassword)
		authRoutes.POST("/logout", auth, h.Logout)
	}

	doctorRoutes := api.Group("/doctors")
	{
		doctorRoutes.GET("", h.ListDoctors)
		doctorRoutes.GET("/:id", h.GetDoctor)
	}

	patientRoutes := api.Group("/patients", auth, usersOnly)
	{
		patientRoutes.GET("", h.ListPatients)
		patientRoutes.POST("", h.CreatePatient)
		patientRoutes.GET("/:id", h.GetPatient)
		patientRoutes.PUT("/:id", h.UpdatePatient)
		patientRoutes.DELETE("/:id", h.DeletePatient)
	}

	appointmentRoutes := api.Group("/appointments", auth)
	{
		appointmentRoutes.POST("", usersOnly, h.CreateAppointment)
		appointmentRoutes.GET("", h.ListAppointments)
		appointmentRoutes.GET("/:id", h.GetAppointment)
		appointmentRoutes.PUT("/:id/status", h.UpdateAppointmentStatus)
		appointmentRoutes.DELETE("/:id", usersOnly, h.DeleteAppointment)
	}

	api.POST("/meeting/create", auth, h.CreateMeeting)

	transcriptionRoutes := api.Group("/transcription")
	{
		transcriptionRoutes.POST("/start/:meetingId", auth, h.StartTranscription)
		transcriptionRoutes.POST("/stop/:meetingId", auth, h.StopTranscription)
		transcriptionRoutes.POST("/webhook", h.TranscriptionWebhook)
	}

	return r
}
