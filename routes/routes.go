package routes

import (
	"time"

	"innkeeper/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoomRoutes registers catalog endpoints.
func RegisterRoomRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/rooms")
	{
		api.GET("", hb.ListAvailableRooms)
		api.GET("/search", hb.SearchRooms)
		api.GET("/label/:label", hb.FindRoomByLabel)
		api.GET("/:id/quote", hb.QuoteRoom)
	}
}

// RegisterReservationRoutes registers booking and settlement endpoints.
func RegisterReservationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reservations")
	{
		api.POST("", hb.Book)
		api.GET("/:id", hb.GetReservation)
		api.DELETE("/:id", hb.Cancel)
		api.POST("/:id/payments", hb.RecordPayment)
		api.GET("/:id/payment", hb.GetPayment)
		api.GET("/:id/receipt", hb.Receipt)
	}
	r.POST("/api/checkout", hb.Checkout)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterRoomRoutes(r, hb)
	RegisterReservationRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
