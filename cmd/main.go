package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"travelbay/backend/internal/api/handler"
	"travelbay/backend/internal/chathub"
	"travelbay/backend/internal/config"
	"travelbay/backend/internal/models"
	"travelbay/backend/internal/notify"
	"travelbay/backend/internal/storage"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Agency{},
		&models.Trip{},
		&models.Car{},
		&models.Hotel{},
		&models.HotelRoom{},
		&models.Booking{},
		&models.ChatMessage{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting Travelbay backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	hub := chathub.NewHub(s, s)
	if cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegramNotifier(cfg.TelegramToken, s)
		if err != nil {
			log.Printf("WARNING: Telegram notifier disabled: %v", err)
		} else {
			hub.Dispatcher.SetOfflineNotifier(notifier)
		}
	}

	go hub.Run()
	go hub.ConsumeRelay(s.SubscribeRelay(context.Background()))

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	h := handler.NewHandler(hub, s, cfg)

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	// The payment gateway calls back here; its report is re-verified when
	// a verifier is configured.
	r.POST("/payments/callback", h.PaymentCallback)

	// Public listing browse.
	r.GET("/trips", h.ListTrips)
	r.GET("/trips/:id", h.GetTrip)
	r.GET("/cars", h.ListCars)
	r.GET("/cars/:id", h.GetCar)
	r.GET("/hotels", h.ListHotels)
	r.GET("/hotels/:id", h.GetHotel)
	r.GET("/hotels/:id/rooms", h.ListRooms)

	auth := r.Group("/", h.AuthRequired())
	auth.GET("/ws", h.ServeWebSocket)

	auth.GET("/chats", h.GetConversations)
	auth.GET("/chats/history", h.GetChatHistory)
	auth.POST("/chats/read", h.MarkRead)

	auth.POST("/trips", h.CreateTrip)
	auth.POST("/cars", h.CreateCar)
	auth.POST("/hotels", h.CreateHotel)
	auth.POST("/hotels/:id/rooms", h.CreateRoom)

	auth.POST("/bookings", h.CreateBooking)
	auth.GET("/bookings", h.ListMyBookings)
	auth.GET("/bookings/:id/ticket", h.BookingTicket)

	server := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
