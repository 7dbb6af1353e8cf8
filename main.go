package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bookly/bookly/handlers"
	"github.com/bookly/bookly/internal/blocklist"
	"github.com/bookly/bookly/internal/books"
	"github.com/bookly/bookly/internal/config"
	"github.com/bookly/bookly/internal/database"
	"github.com/bookly/bookly/internal/reviews"
	"github.com/bookly/bookly/internal/storage"
	"github.com/bookly/bookly/internal/tags"
	"github.com/bookly/bookly/internal/tokens"
	"github.com/bookly/bookly/internal/users"
	"github.com/bookly/bookly/pkg/logger"
	"github.com/bookly/bookly/pkg/metrics"
	"github.com/bookly/bookly/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level controlled via LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v jwt_secret_set=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.JWT.Secret != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	ctx := context.Background()

	// Connect to Redis early: the revocation store needs it, and the
	// rate limiter can use it when configured.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// MongoDB with retry/backoff to tolerate startup races
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			mongoClient, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
			mongoClient = nil
		} else {
			defer func() { _ = mongoClient.Disconnect(ctx) }()
		}
	}

	// core services
	codec := tokens.NewCodec(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	var revocations blocklist.Store
	if redisClient != nil {
		revocations = blocklist.NewRedisStore(redisClient, "", cfg.JWT.BlocklistTTL)
	}

	var (
		usersSvc   *users.Service
		booksSvc   *books.Service
		reviewsSvc *reviews.Service
		tagsSvc    *tags.Service
	)
	if mongoClient != nil {
		db := mongoClient.Database(cfg.MongoDB.Database)
		usersSvc = users.NewService(users.NewMongoRepository(db.Collection("users")))
		booksSvc = books.NewService(books.NewMongoRepository(db.Collection("books")))
		reviewsSvc = reviews.NewService(reviews.NewMongoRepository(db.Collection("reviews")), usersSvc, booksSvc)
		tagsSvc = tags.NewService(tags.NewMongoRepository(db.Collection("tags")), booksSvc)
	}

	// cover storage is optional; the books handler degrades gracefully
	var covers *storage.CoverStorage
	if mcfg := storage.LoadMinIOConfig(); mcfg.Endpoint != "" {
		covers, err = storage.NewCoverStorage(mcfg)
		if err != nil {
			logger.Warnf("cover storage unavailable: %v", err)
			covers = nil
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["mongodb"] = usersSvc != nil
		if usersSvc == nil {
			ready = false
		}

		deps["redis"] = false
		if redisClient != nil {
			deps["redis"] = redisClient.Ping(c.Request.Context()).Err() == nil
		}
		if !deps["redis"] {
			ready = false
		}

		status := gin.H{"deps": deps, "uptime": time.Since(startTime).String()}
		if !ready {
			status["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["status"] = "ready"
		c.JSON(http.StatusOK, status)
	})

	if usersSvc != nil && revocations != nil {
		api := r.Group("/api/v1")
		handlers.NewAuthHandler(cfg, usersSvc, codec, revocations).Register(api)
		handlers.NewBooksHandler(booksSvc, usersSvc, codec, revocations, covers).Register(api)
		handlers.NewReviewsHandler(reviewsSvc, usersSvc, codec, revocations).Register(api)
		handlers.NewTagsHandler(tagsSvc, usersSvc, codec, revocations).Register(api)
	} else {
		logger.Warnf("API routes not registered: mongodb=%v redis=%v", usersSvc != nil, revocations != nil)
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting bookly service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
