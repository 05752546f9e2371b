package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/wyfcoding/storefront/internal/cart/application"
	cartdomain "github.com/wyfcoding/storefront/internal/cart/domain"
	cartmessaging "github.com/wyfcoding/storefront/internal/cart/infrastructure/messaging"
	cartmysql "github.com/wyfcoding/storefront/internal/cart/infrastructure/persistence/mysql"
	carthttp "github.com/wyfcoding/storefront/internal/cart/interfaces/http"
	catalogapp "github.com/wyfcoding/storefront/internal/catalog/application"
	cataloghttp "github.com/wyfcoding/storefront/internal/catalog/interfaces/http"
	checkoutapp "github.com/wyfcoding/storefront/internal/checkout/application"
	checkoutdomain "github.com/wyfcoding/storefront/internal/checkout/domain"
	checkoutmessaging "github.com/wyfcoding/storefront/internal/checkout/infrastructure/messaging"
	checkouthttp "github.com/wyfcoding/storefront/internal/checkout/interfaces/http"
	contentapp "github.com/wyfcoding/storefront/internal/content/application"
	contenthttp "github.com/wyfcoding/storefront/internal/content/interfaces/http"
	opshttp "github.com/wyfcoding/storefront/internal/ops/http"
	paymentapp "github.com/wyfcoding/storefront/internal/payment/application"
	paymentmessaging "github.com/wyfcoding/storefront/internal/payment/infrastructure/messaging"
	paymenthttp "github.com/wyfcoding/storefront/internal/payment/interfaces/http"
	"github.com/wyfcoding/storefront/internal/platform/bankgw"
	"github.com/wyfcoding/storefront/internal/platform/woocommerce"
	wishlistapp "github.com/wyfcoding/storefront/internal/wishlist/application"
	wishlistdomain "github.com/wyfcoding/storefront/internal/wishlist/domain"
	wishlistmysql "github.com/wyfcoding/storefront/internal/wishlist/infrastructure/persistence/mysql"
	wishlisthttp "github.com/wyfcoding/storefront/internal/wishlist/interfaces/http"
	"github.com/wyfcoding/storefront/pkg/cache"
	"github.com/wyfcoding/storefront/pkg/config"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/middleware"
	"github.com/wyfcoding/storefront/pkg/mq"
	"github.com/wyfcoding/storefront/pkg/outbox"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/storefront/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	ctx := context.Background()

	// 3. 指标
	m := metrics.New(cfg.ServiceName)

	// 4. 数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to connect database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&cartdomain.Cart{},
		&cartdomain.CartItem{},
		&wishlistdomain.Wishlist{},
		&wishlistdomain.WishlistItem{},
		&outbox.Message{},
	); err != nil {
		logger.Fatal(ctx, "Failed to migrate database", "error", err)
	}

	// 5. Kafka & Outbox
	producer := mq.NewProducer(mq.Config{
		Brokers:      cfg.Kafka.Brokers,
		GroupID:      cfg.Kafka.GroupID,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	})
	defer producer.Close()

	outboxManager := outbox.NewManager(database.DB)
	outboxProcessor := outbox.NewProcessor(outboxManager, producer.SendRaw, 100, 2*time.Second)

	// 6. Redis
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to init redis", "error", err)
	}
	defer redisCache.Close()

	// 7. 上游客户端
	wooClient := woocommerce.New(woocommerce.Config{
		RESTBaseURL:    cfg.WooCommerce.RESTBaseURL,
		GraphQLURL:     cfg.WooCommerce.GraphQLURL,
		ConsumerKey:    cfg.WooCommerce.ConsumerKey,
		ConsumerSecret: cfg.WooCommerce.ConsumerSecret,
		Timeout:        cfg.WooCommerce.Timeout,
		MaxRetries:     cfg.WooCommerce.MaxRetries,
	}, m)

	gatewayClient := bankgw.New(bankgw.Config{
		TokenURL:      cfg.Gateway.TokenURL,
		OrderURL:      cfg.Gateway.OrderURL,
		ClientID:      cfg.Gateway.ClientID,
		ClientSecret:  cfg.Gateway.ClientSecret,
		ReturnURL:     cfg.Gateway.ReturnURL,
		WebhookSecret: cfg.Gateway.WebhookSecret,
		Timeout:       cfg.Gateway.Timeout,
		Currency:      cfg.Gateway.Currency,
	}, m)

	// 8. 仓储与应用服务
	cartRepo := cartmysql.NewCartRepository(database.DB)
	cartPublisher := cartmessaging.NewOutboxPublisher(outboxManager)
	cartService := cartapp.NewCartApplicationService(cartRepo, cartPublisher, m)

	wishlistRepo := wishlistmysql.NewWishlistRepository(database.DB)
	wishlistService := wishlistapp.NewWishlistApplicationService(wishlistRepo)

	shippingPolicy := checkoutdomain.NewShippingPolicy(
		cfg.Shipping.FreeThreshold,
		cfg.Shipping.CapitalFee,
		cfg.Shipping.OtherFee,
		cfg.Shipping.CapitalNames,
	)

	checkoutPublisher := checkoutmessaging.NewOutboxPublisher(outboxManager)
	checkoutService := checkoutapp.NewCheckoutApplicationService(
		wooClient, cartService, redisCache, shippingPolicy, checkoutPublisher, m)

	paymentPublisher := paymentmessaging.NewOutboxPublisher(outboxManager)
	orchestrator := paymentapp.NewOrchestrator(
		wooClient, gatewayClient, cartService, shippingPolicy, paymentPublisher, m)
	webhookService := paymentapp.NewWebhookService(
		wooClient, gatewayClient, redisCache, paymentPublisher, m)
	reconcileJob := paymentapp.NewReconcileJob(
		wooClient, paymentPublisher, m,
		time.Duration(cfg.Reconcile.Interval)*time.Second,
		time.Duration(cfg.Reconcile.StaleAfter)*time.Second,
	)

	catalogService := catalogapp.NewCatalogQueryService(wooClient, redisCache, m)
	contentService := contentapp.NewContentService(wooClient, redisCache, m)

	// 9. HTTP 路由
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinMetricsMiddleware(m),
		middleware.GinCORSMiddleware(),
		middleware.LocaleMiddleware(middleware.LocaleConfig{
			Default:    cfg.Locale.Default,
			Supported:  cfg.Locale.Supported,
			CookieName: cfg.Locale.CookieName,
		}),
		middleware.ClientTokenMiddleware(),
	)

	api := router.Group("/api")
	carthttp.NewCartHandler(cartService).RegisterRoutes(api)
	wishlisthttp.NewWishlistHandler(wishlistService).RegisterRoutes(api)
	checkouthttp.NewCheckoutHandler(checkoutService).RegisterRoutes(api)
	paymenthttp.NewPaymentHandler(orchestrator, webhookService).RegisterRoutes(api)
	cataloghttp.NewCatalogHandler(catalogService).RegisterRoutes(api)
	contenthttp.NewContentHandler(contentService).RegisterRoutes(api)
	opshttp.NewOpsHandler(cfg.Revalidate.Secret, wooClient, catalogService, contentService).RegisterRoutes(api)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName, "version": cfg.Version})
	})

	// 10. 启动
	g, gctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		outboxProcessor.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		outboxProcessor.Stop()
		return nil
	})

	if cfg.Metrics.Enabled {
		g.Go(func() error {
			metrics.Serve(cfg.Metrics.Port, cfg.Metrics.Path)
			return nil
		})
	}

	if cfg.Reconcile.Enabled {
		g.Go(func() error {
			reconcileJob.Start(gctx)
			return nil
		})
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	g.Go(func() error {
		logger.Info(ctx, "HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info(ctx, "Shutdown signal received", "signal", sig.String())
		case <-gctx.Done():
			return gctx.Err()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "Service exited with error", "error", err)
	}
	logger.Info(ctx, "Service stopped")
}
