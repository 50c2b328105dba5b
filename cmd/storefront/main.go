package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dimabalawov/wallpaper-imp/internal/api"
	"github.com/dimabalawov/wallpaper-imp/internal/cart"
	"github.com/dimabalawov/wallpaper-imp/internal/catalog"
	"github.com/dimabalawov/wallpaper-imp/internal/checkout"
)

type Config struct {
	HTTPPort        string
	RedisAddr       string
	RedisPassword   string
	CatalogURL      string
	SiteURL         string
	ConsumerKey     string
	ConsumerSecret  string
	PaymentCard     string
	PaymentCOD      string
	DeliveryCost    float64
	OrderBrokers    []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		CatalogURL:      getEnv("CATALOG_API_URL", ""),
		SiteURL:         getEnv("WORDPRESS_SITE_URL", ""),
		ConsumerKey:     getEnv("WC_CONSUMER_KEY", ""),
		ConsumerSecret:  getEnv("WC_CONSUMER_SECRET", ""),
		PaymentCard:     getEnv("WC_PAYMENT_METHOD_CARD", "bacs"),
		PaymentCOD:      getEnv("WC_PAYMENT_METHOD_COD", "cod"),
		DeliveryCost:    60,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}

	if raw := getEnv("DELIVERY_COST", ""); raw != "" {
		cost, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Fatalf("invalid DELIVERY_COST %q: %v", raw, err)
		}
		cfg.DeliveryCost = cost
	}
	if raw := getEnv("ORDER_EVENTS_BROKERS", ""); raw != "" {
		cfg.OrderBrokers = strings.Split(raw, ",")
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	if cfg.SiteURL == "" || cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		log.Fatal("WORDPRESS_SITE_URL, WC_CONSUMER_KEY and WC_CONSUMER_SECRET must be set")
	}
	if cfg.CatalogURL == "" {
		log.Fatal("CATALOG_API_URL must be set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Connected to Redis at %s", cfg.RedisAddr)

	stores := cart.NewManager(ctx, redisClient, nil)
	catalogClient := catalog.NewClient(cfg.CatalogURL, nil)
	submitter := checkout.NewSubmitter(checkout.Config{
		SiteURL:           cfg.SiteURL,
		ConsumerKey:       cfg.ConsumerKey,
		ConsumerSecret:    cfg.ConsumerSecret,
		PaymentMethodCard: cfg.PaymentCard,
		PaymentMethodCOD:  cfg.PaymentCOD,
	}, nil)

	if len(cfg.OrderBrokers) > 0 {
		janitor := cart.NewJanitor(redisClient, cfg.OrderBrokers...)
		defer janitor.Close()
		go janitor.Run(ctx)
		log.Printf("Order-completed janitor consuming from %v", cfg.OrderBrokers)
	}

	cartHandler := api.NewCartHandler(stores, catalogClient, cfg.RequestTimeout)
	checkoutHandler := api.NewCheckoutHandler(stores, submitter, cfg.DeliveryCost, cfg.RequestTimeout)
	catalogHandler := api.NewCatalogHandler(catalogClient, cfg.RequestTimeout)
	router := api.NewRouter(cartHandler, checkoutHandler, catalogHandler, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
