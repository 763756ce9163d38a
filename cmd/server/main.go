package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop_backend/internal/config"
	"shop_backend/internal/handler"
	"shop_backend/internal/imagestore"
	"shop_backend/internal/middleware"
	"shop_backend/internal/repository"
	"shop_backend/internal/service"
	"shop_backend/internal/utils"

	"github.com/joho/godotenv"
)

// stores bundles the repositories of whichever backend STORE_DRIVER selected
type stores struct {
	users    repository.UserRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	ping     func(ctx context.Context) error
	close    func()
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// --- Store Connection ---
	st, err := openStores(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.close()

	// --- Image Storage ---
	images, imagesDir, err := openImageStore(ctx, cfg.Images)
	if err != nil {
		log.Fatalf("Failed to set up image storage: %v", err)
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpirationHours)

	// --- Initialize Services ---
	authService := service.NewAuthService(st.users, jwtUtil, cfg.InitialAdminEmail)
	productService := service.NewProductService(st.products, images)
	orderService := service.NewOrderService(st.orders)
	cartService := service.NewCartService(st.users)

	// --- Setup Gin Router ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := handler.NewRouter(handler.RouterConfig{
		Auth:        handler.NewAuthHandler(authService),
		Products:    handler.NewProductHandler(productService),
		Orders:      handler.NewOrderHandler(orderService),
		Cart:        handler.NewCartHandler(cartService),
		AuthMW:      middleware.JWTAuthMiddleware(jwtUtil, st.users),
		AdminMW:     middleware.AdminMiddleware(),
		CORSMW:      middleware.CORSMiddleware(cfg.CORSAllowedOrigins),
		HealthCheck: st.ping,
		ImagesDir:   imagesDir,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

func openStores(ctx context.Context, cfg config.StoreConfig) (*stores, error) {
	switch cfg.Driver {
	case config.StoreDriverMongo:
		client, db, err := config.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := config.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			users:    repository.NewMongoUserRepository(db),
			products: repository.NewMongoProductRepository(db),
			orders:   repository.NewMongoOrderRepository(db),
			ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					log.Printf("Error disconnecting from Mongo: %v", err)
				}
			},
		}, nil

	case config.StoreDriverMemory:
		users, products, orders := repository.NewMemoryRepositories()
		return &stores{
			users:    users,
			products: products,
			orders:   orders,
			ping:     func(context.Context) error { return nil },
			close:    func() {},
		}, nil

	default:
		dbPool, err := config.ConnectDB(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := config.AutoMigrate(ctx, dbPool); err != nil {
			dbPool.Close()
			return nil, err
		}
		return &stores{
			users:    repository.NewUserRepository(dbPool),
			products: repository.NewProductRepository(dbPool),
			orders:   repository.NewOrderRepository(dbPool),
			ping:     dbPool.Ping,
			close:    dbPool.Close,
		}, nil
	}
}

// openImageStore returns the configured store and, for local storage, the directory to serve
func openImageStore(ctx context.Context, cfg config.ImageConfig) (imagestore.ImageStore, string, error) {
	if cfg.Driver == config.ImageStoreS3 {
		store, err := imagestore.NewS3Store(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		log.Printf("Product images will be uploaded to s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix)
		return store, "", nil
	}

	store, err := imagestore.NewLocalStore(cfg.UploadsDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, "", err
	}
	log.Printf("Product images will be stored in: %s", store.Dir())
	return store, store.Dir(), nil
}
