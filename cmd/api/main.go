package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/shop-assistant/internal/api"
	"github.com/example/shop-assistant/internal/auth"
	"github.com/example/shop-assistant/internal/config"
	"github.com/example/shop-assistant/internal/conversation"
	"github.com/example/shop-assistant/internal/domain/catalog"
	"github.com/example/shop-assistant/internal/domain/coupon"
	"github.com/example/shop-assistant/internal/infrastructure/kafka"
	"github.com/example/shop-assistant/internal/session"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] Config error: %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Shop Assistant")
	log.Println("[API] ========================================")
	log.Printf("[API] Catalog: %s", cfg.ProductsPath)
	log.Printf("[API] Coupons: %s", cfg.CouponsPath)
	log.Printf("[API] Session backend: %s", cfg.SessionBackend)

	cat, err := catalog.Load(cfg.ProductsPath)
	if err != nil {
		log.Fatalf("[API] Failed to load catalog: %v", err)
	}
	book, err := coupon.Load(cfg.CouponsPath)
	if err != nil {
		log.Fatalf("[API] Failed to load coupons: %v", err)
	}
	log.Printf("[API] Loaded %d products, %d coupons", len(cat.Products()), len(book.Coupons()))

	replies := conversation.DefaultReplies()
	if cfg.RepliesPath != "" {
		replies, err = conversation.LoadReplies(cfg.RepliesPath)
		if err != nil {
			log.Fatalf("[API] Failed to load replies: %v", err)
		}
		log.Printf("[API] Replies loaded from %s", cfg.RepliesPath)
	}

	engine := conversation.NewEngine(cat, book, replies)

	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		engine.SetPublisher(producer)
		log.Printf("[API] Publishing order events to %s via %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	} else {
		log.Println("[API] Kafka disabled (no brokers configured)")
	}

	store, cleanup := newSessionStore(ctx, cfg)
	defer cleanup()

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenExpiry)

	reload := func() error {
		newCat, err := catalog.Load(cfg.ProductsPath)
		if err != nil {
			return err
		}
		newBook, err := coupon.Load(cfg.CouponsPath)
		if err != nil {
			return err
		}
		engine.ReplaceData(newCat, newBook)
		log.Printf("[API] Reloaded %d products, %d coupons", len(newCat.Products()), len(newBook.Coupons()))
		return nil
	}

	handlers := api.NewHandlers(engine, store, jwtService, cfg.AdminPasswordHash, reload)
	router := api.NewRouter(handlers, jwtService)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}
}

// newSessionStore builds the configured session backend and returns it
// with its cleanup function.
func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func()) {
	switch cfg.SessionBackend {
	case config.BackendPostgres:
		db, err := session.ConnectPostgres(cfg.PostgresURL)
		if err != nil {
			log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
		}
		store, err := session.NewPostgresStore(db)
		if err != nil {
			log.Fatalf("[API] Failed to initialize session store: %v", err)
		}
		log.Println("[API] Sessions: PostgreSQL")
		return store, func() { db.Close() }

	case config.BackendDynamo:
		client, err := session.NewDynamoClient(ctx)
		if err != nil {
			log.Fatalf("[API] Failed to create DynamoDB client: %v", err)
		}
		log.Printf("[API] Sessions: DynamoDB (%s)", cfg.DynamoTable)
		return session.NewDynamoStore(client, cfg.DynamoTable), func() {}

	default:
		log.Println("[API] Sessions: in-memory (not durable)")
		return session.NewMemoryStore(), func() {}
	}
}
