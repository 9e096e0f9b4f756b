package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/villagefriends/network_backend/billing"
	"github.com/villagefriends/network_backend/config"
	"github.com/villagefriends/network_backend/controllers"
	"github.com/villagefriends/network_backend/database"
	"github.com/villagefriends/network_backend/discovery"
	"github.com/villagefriends/network_backend/logging"
	"github.com/villagefriends/network_backend/meetup"
	"github.com/villagefriends/network_backend/middleware"
	"github.com/villagefriends/network_backend/notifications"
	"github.com/villagefriends/network_backend/repository"
	"github.com/villagefriends/network_backend/websocket"
)

// @title           Village Friends API
// @version         1.0
// @description     API server for the Village Friends family network
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	logger := logging.New(os.Getenv("DEBUG") == "true")
	defer logger.Sync()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using system environment variables")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	// Repositories
	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	events := repository.NewEventRepository(db)
	messages := repository.NewMessageRepository(db)
	meetups := repository.NewMeetupRepository(db)
	groups := repository.NewGroupRepository(db)
	pushSubs := repository.NewPushSubscriptionRepository(db)
	payments := repository.NewPaymentRepository(db)
	verifications := repository.NewVerificationRepository(db)

	// Domain services
	pushClient := notifications.NewWebPushClient(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber)
	dispatcher := notifications.NewDispatcher(users, pushSubs, pushClient, logger)
	engine := discovery.NewEngine(profiles)
	workflow := meetup.NewWorkflow(profiles, meetups, events, dispatcher)
	billingSvc := billing.NewService(cfg.StripeAPIKey, cfg.StripeWebhookSecret, payments, users, logger)

	hub := websocket.NewHub(logger)
	go hub.Run()
	wsHandler := websocket.NewHandler(hub, profiles)

	// Controllers
	authCtrl := controllers.NewAuthController(users)
	profileCtrl := controllers.NewProfileController(profiles, cfg.UploadDir)
	discoveryCtrl := controllers.NewDiscoveryController(engine, profiles)
	eventCtrl := controllers.NewEventController(events, profiles, dispatcher)
	messageCtrl := controllers.NewMessageController(messages, profiles, dispatcher, hub)
	meetupCtrl := controllers.NewMeetupController(workflow, meetups, profiles, hub)
	groupCtrl := controllers.NewGroupController(groups, users, profiles, events, dispatcher)
	subscriptionCtrl := controllers.NewSubscriptionController(billingSvc, users, payments, logger)
	notificationCtrl := controllers.NewNotificationController(pushSubs, users, dispatcher, cfg.VAPIDPublicKey)
	verificationCtrl := controllers.NewVerificationController(verifications)

	// Set up router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Authentication routes
	auth := router.Group("/api")
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)
	}

	// Payment provider webhook; authenticated by signature, not JWT
	router.POST("/api/subscriptions/webhook", subscriptionCtrl.Webhook)

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		api.GET("/me", authCtrl.Me)
		api.POST("/logout", authCtrl.Logout)

		// Profile routes
		api.POST("/profiles", profileCtrl.CreateProfile)
		api.GET("/profiles/me", profileCtrl.GetMyProfile)
		api.PUT("/profiles/me", profileCtrl.UpdateProfile)
		api.POST("/profiles/me/photo", profileCtrl.UploadPhoto)
		api.GET("/profiles/:id", profileCtrl.GetProfile)

		// Discovery routes
		api.GET("/families/nearby", discoveryCtrl.Nearby)
		api.GET("/families/search", discoveryCtrl.Search)

		// Event routes
		api.POST("/events", eventCtrl.CreateEvent)
		api.GET("/events", eventCtrl.ListEvents)
		api.GET("/events/mine", eventCtrl.MyEvents)
		api.GET("/events/calendar", eventCtrl.Calendar)
		api.GET("/events/:id", eventCtrl.GetEvent)
		api.POST("/events/:id/rsvp", eventCtrl.RSVP)
		api.DELETE("/events/:id/rsvp", eventCtrl.CancelRSVP)

		// Message routes
		api.POST("/messages", messageCtrl.SendMessage)
		api.GET("/messages", messageCtrl.ListMessages)
		api.GET("/messages/conversations", messageCtrl.Conversations)
		api.GET("/messages/conversations/:familyId", messageCtrl.GetConversation)

		// Meetup routes
		api.POST("/meetups", meetupCtrl.CreateRequest)
		api.GET("/meetups", meetupCtrl.ListRequests)
		api.POST("/meetups/:id/respond", meetupCtrl.Respond)

		// Group routes
		api.POST("/groups", groupCtrl.CreateGroup)
		api.GET("/groups", groupCtrl.ListGroups)
		api.GET("/groups/mine", groupCtrl.MyGroups)
		api.GET("/groups/:id", groupCtrl.GetGroup)
		api.PUT("/groups/:id", groupCtrl.UpdateGroup)
		api.DELETE("/groups/:id", groupCtrl.DeleteGroup)
		api.POST("/groups/:id/join", groupCtrl.JoinGroup)
		api.POST("/groups/:id/leave", groupCtrl.LeaveGroup)
		api.POST("/groups/:id/requests/:familyId/approve", groupCtrl.ApproveJoinRequest)
		api.POST("/groups/:id/requests/:familyId/reject", groupCtrl.RejectJoinRequest)
		api.DELETE("/groups/:id/members/:familyId", groupCtrl.RemoveMember)
		api.PUT("/groups/:id/roles", groupCtrl.UpdateMemberRole)
		api.POST("/groups/:id/transfer", groupCtrl.TransferOwnership)
		api.POST("/groups/:id/announcements", groupCtrl.CreateAnnouncement)
		api.POST("/groups/:id/events", groupCtrl.CreateGroupEvent)
		api.GET("/groups/:id/events", groupCtrl.ListGroupEvents)

		// Subscription routes
		api.GET("/subscriptions/plans", subscriptionCtrl.GetPlans)
		api.POST("/subscriptions/checkout", subscriptionCtrl.CreateCheckout)
		api.GET("/subscriptions/checkout/:sessionId", subscriptionCtrl.GetCheckoutStatus)
		api.GET("/subscriptions/me", subscriptionCtrl.MySubscription)

		// Notification routes
		api.GET("/notifications/vapid-key", notificationCtrl.VapidKey)
		api.POST("/notifications/subscribe", notificationCtrl.Subscribe)
		api.POST("/notifications/unsubscribe", notificationCtrl.Unsubscribe)
		api.GET("/notifications/preferences", notificationCtrl.GetPreferences)
		api.PUT("/notifications/preferences", notificationCtrl.UpdatePreferences)
		api.POST("/notifications/test", notificationCtrl.SendTest)

		// Verification routes
		api.POST("/verification", verificationCtrl.SubmitVerification)
		api.GET("/verification", verificationCtrl.VerificationStatus)
	}

	// WebSocket route
	router.GET("/ws", wsHandler.HandleConnection)

	// Uploaded profile photos
	router.Static("/uploads", cfg.UploadDir)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		logger.Error("database close", zap.Error(err))
	}
}
