package stubserver

import (
	"net/http"
	"strconv"
	"time"

	"roombook/models"
	"roombook/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine serving the booking API contract over the
// given store.
func NewRouter(store *Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RateLimitMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.POST("/auth/telegram", authTelegramHandler(store))
		api.GET("/auth/verify", verifyHandler())
		api.GET("/booking/rooms", roomsHandler(store))
		api.GET("/booking/rooms/:id/availability", availabilityHandler(store))

		protected := api.Group("")
		protected.Use(AuthMiddleware())
		protected.GET("/profile", profileHandler(store))
		protected.POST("/booking", createBookingHandler(store))
		protected.GET("/booking/my", myBookingsHandler(store))
		protected.DELETE("/booking/:id", cancelBookingHandler(store))
	}
	return r
}

func authTelegramHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AuthRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.InitData == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "initData is required"})
			return
		}
		user := store.UpsertUser(req.InitData, req.Phone)
		token, err := GenerateToken(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
			return
		}
		c.JSON(http.StatusOK, models.AuthResponse{Token: token, User: user})
	}
}

func verifyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		valid := false
		if tokenString != "" {
			if _, err := ValidateToken(tokenString); err == nil {
				valid = true
			}
		}
		c.JSON(http.StatusOK, models.VerifyResponse{Valid: valid})
	}
}

func profileHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("userID")
		user, ok := store.UserByID(userID)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
			return
		}
		c.JSON(http.StatusOK, models.Profile{
			User:       user,
			Statistics: store.Statistics(userID),
		})
	}
}

func roomsHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, store.Rooms())
	}
}

func availabilityHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
			return
		}
		if _, ok := store.RoomByID(roomID); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		date := c.Query("date")
		slots, err := store.Availability(roomID, date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, models.Availability{AvailableSlots: slots})
	}
}

func createBookingHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("userID")
		var input models.BookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
		booking, err := store.CreateBooking(userID, input)
		if err != nil {
			status := http.StatusBadRequest
			if err == errSlotTaken {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		utils.GetLogger().Info("Stub booking created",
			zap.String("bookingID", booking.ID), zap.Int("userID", userID))
		c.JSON(http.StatusCreated, booking)
	}
}

func myBookingsHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, store.BookingsForUser(c.GetInt("userID")))
	}
}

func cancelBookingHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("userID")
		if err := store.CancelBooking(userID, c.Param("id")); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
