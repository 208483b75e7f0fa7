package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/foodieland/foodieland-api/internal/config"
	"github.com/foodieland/foodieland-api/internal/logging"
	"github.com/foodieland/foodieland-api/internal/media"
	"github.com/foodieland/foodieland-api/internal/ratelimit"
	miniorepo "github.com/foodieland/foodieland-api/internal/repository/minio"
	"github.com/foodieland/foodieland-api/internal/repository/postgres"
	"github.com/foodieland/foodieland-api/internal/service"
	httpx "github.com/foodieland/foodieland-api/internal/transport/http"
	"github.com/foodieland/foodieland-api/internal/transport/mail"
	"github.com/foodieland/foodieland-api/internal/util"
)

const rateLimitPurgeInterval = time.Minute

func main() {
	cfg := config.Load()

	logger, closer, err := logging.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
		_ = closer.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	minioClient, err := miniorepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		return fmt.Errorf("connect object storage: %w", err)
	}
	storage := miniorepo.NewStorage(minioClient, cfg.MinIOEndpoint, cfg.MinIOPublicURL, cfg.MinIOUseSSL)
	if err := storage.EnsureBuckets(ctx, cfg.MinIOBucketProfile, cfg.MinIOBucketRecipes, cfg.MinIOBucketBlog); err != nil {
		return fmt.Errorf("prepare buckets: %w", err)
	}

	mailer := mail.NewOTPMailer(nil, cfg.SMTP.From)
	if cfg.SMTP.Host != "" {
		pool, err := mail.NewPool(cfg.SMTP)
		if err != nil {
			return fmt.Errorf("smtp pool: %w", err)
		}
		defer pool.Close()
		mailer = mail.NewOTPMailer(pool, cfg.SMTP.From)
	} else {
		logger.Warn("SMTP_HOST not set; OTP emails will fail to send")
	}

	references, err := util.NewReferenceGenerator(cfg.SnowflakeNode)
	if err != nil {
		return err
	}

	userRepo := postgres.NewUserRepo(db)
	roleRepo := postgres.NewRoleRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)
	recipeRepo := postgres.NewRecipeRepo(db)
	blogRepo := postgres.NewBlogPostRepo(db)
	categoryRepo := postgres.NewCategoryRepo(db)
	tagRepo := postgres.NewTagRepo(db)
	commentRepo := postgres.NewCommentRepo(db)
	favoriteRepo := postgres.NewFavoriteRepo(db)

	limiter := ratelimit.NewLimiter(postgres.NewRateLimitRepo(db),
		ratelimit.WithMaxAttempts(cfg.RateLimitMaxAttempts),
		ratelimit.WithWindow(cfg.RateLimitWindow),
	)
	images := media.NewDecodeProcessor(cfg.ImageMaxBytes)

	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	authService := service.NewAuthService(userRepo, roleRepo, sessionRepo, mailer, jwtManager, cfg.GoogleAudience, logger)
	resetService := service.NewPasswordResetService(userRepo, mailer, logger)
	recipeService := service.NewRecipeService(recipeRepo, categoryRepo, tagRepo, commentRepo, favoriteRepo, storage, service.RecipeServiceConfig{
		Bucket:         cfg.MinIOBucketRecipes,
		ImageProcessor: images,
	})
	blogService := service.NewBlogService(blogRepo, categoryRepo, tagRepo, commentRepo, storage, service.BlogServiceConfig{
		Bucket:         cfg.MinIOBucketBlog,
		ImageProcessor: images,
	})
	categoryService := service.NewCategoryService(categoryRepo, recipeService)
	commentService := service.NewCommentService(commentRepo, recipeRepo, blogRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, recipeRepo)
	userService := service.NewUserService(userRepo, favoriteRepo, storage, service.UserServiceConfig{
		Bucket:         cfg.MinIOBucketProfile,
		ImageProcessor: images,
	})
	contactService := service.NewContactService(postgres.NewContactMessageRepo(db), references)
	settingService := service.NewSettingService(postgres.NewSettingRepo(db))

	e := httpx.NewRouter(allowedOrigins(cfg), logger)
	if err := httpx.TrustProxies(e, cfg.TrustedProxies); err != nil {
		return fmt.Errorf("configure proxies: %w", err)
	}
	httpx.RegisterSwagger(e, cfg.SwaggerSpec, logger)
	api := e.Group("/api")
	httpx.RegisterAuth(api, authService, resetService, limiter, logger)
	httpx.RegisterUsers(api, authService, userService, recipeService, blogService, logger)
	httpx.RegisterRecipes(api, authService, recipeService, favoriteService, logger)
	httpx.RegisterBlog(api, authService, blogService, logger)
	httpx.RegisterComments(api, authService, commentService, logger)
	httpx.RegisterCategories(api, authService, categoryService, logger)
	httpx.RegisterSite(api, authService, contactService, settingService, logger)

	go purgeRateLimits(ctx, limiter, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func purgeRateLimits(ctx context.Context, limiter *ratelimit.Limiter, logger *zap.Logger) {
	ticker := time.NewTicker(rateLimitPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := limiter.Purge(ctx)
			if err != nil {
				logger.Warn("purge rate limit counters", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Debug("purged rate limit counters", zap.Int64("removed", removed))
			}
		}
	}
}

// allowedOrigins adds the SPA origin to an explicit CORS list.
func allowedOrigins(cfg config.Config) []string {
	origins := cfg.AllowOrigins
	if cfg.FrontendBaseURL == "" || slices.Contains(origins, "*") || slices.Contains(origins, cfg.FrontendBaseURL) {
		return origins
	}
	return append(slices.Clone(origins), cfg.FrontendBaseURL)
}
