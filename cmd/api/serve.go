package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Local_Market/internal/config"
	"Local_Market/internal/handler"
	"Local_Market/internal/payment"
	"Local_Market/internal/pkg"
	"Local_Market/internal/repository/mysql"
	"Local_Market/internal/repository/redis"
	"Local_Market/internal/router"
	"Local_Market/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func serveCmd(configPath *string) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the outbox relayer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run AutoMigrate before serving")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, migrate bool) error {
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)
	pkg.SetSecret(cfg.JWT.Secret, cfg.JWT.TTL)

	if err := mysql.InitDB(cfg.MySQL.DSN); err != nil {
		return fmt.Errorf("mysql: %w", err)
	}
	if migrate {
		if err := mysql.AutoMigrate(mysql.DB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	// 连接redis
	if err := redis.Init(redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redis.Close()

	producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
	if err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	defer producer.Close()

	// 仓储层
	communityRepo := &mysql.CommunityRepository{DB: mysql.DB}
	vendorRepo := &mysql.VendorRepository{DB: mysql.DB}
	productRepo := &mysql.ProductRepository{DB: mysql.DB}
	productQuery := &mysql.ProductQuery{DB: mysql.DB}
	orderRepo := &mysql.OrderRepository{DB: mysql.DB}
	outboxRepo := &mysql.OutboxRepository{DB: mysql.DB}
	sessions := redis.NewSessionRepository(redis.Client, cfg.JWT.TTL)

	gateway := payment.NewStripe(payment.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		FrontendURL:   cfg.Frontend.URL,
	})
	emailSvc := service.NewEmailService(pkg.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, logger)

	communitySvc := service.NewCommunityService(communityRepo, sessions, emailSvc)
	productSvc := service.NewProductService(productRepo, productQuery)
	vendorSvc := service.NewVendorService(vendorRepo, communityRepo, sessions, gateway)
	orderSvc := service.NewOrderService(orderRepo)
	paymentSvc := service.NewPaymentService(gateway, vendorRepo, redis.NewReplayGuard(redis.Client), logger)

	r := router.InitRouter(router.Deps{
		Logger:      logger,
		Sessions:    sessions,
		Communities: communityRepo,
		UploadDir:   cfg.Upload.Dir,
		MaxUpload:   cfg.Upload.MaxBytes,
		Community:   handler.NewCommunityHandler(communitySvc, sessions),
		Product:     handler.NewProductHandler(productSvc),
		Vendor:      handler.NewVendorHandler(vendorSvc),
		Order:       handler.NewOrderHandler(orderSvc),
		Payment:     handler.NewPaymentHandler(paymentSvc),
	})

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	relayer := service.NewOutboxRelayer(outboxRepo, &redis.DistLock{RDB: redis.Client},
		service.KafkaSender(producer), cfg.Outbox.Batch, cfg.Outbox.Interval, logger)
	go relayer.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
