package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "pawn-lending-backend/internal/adapter/http"
	"pawn-lending-backend/internal/adapter/middleware"
	"pawn-lending-backend/internal/adapter/repository/mysql"
	"pawn-lending-backend/internal/config"
	"pawn-lending-backend/internal/domain/application"
	"pawn-lending-backend/internal/domain/artifact"
	"pawn-lending-backend/internal/domain/loan"
	"pawn-lending-backend/internal/domain/notify"
	"pawn-lending-backend/internal/infrastructure/cache"
	"pawn-lending-backend/internal/infrastructure/db"
	"pawn-lending-backend/internal/infrastructure/logger"
	"pawn-lending-backend/internal/infrastructure/mail"
	"pawn-lending-backend/internal/infrastructure/render"
	"pawn-lending-backend/internal/infrastructure/storage"
	applicationuc "pawn-lending-backend/internal/usecase/application"
	audituc "pawn-lending-backend/internal/usecase/audit"
	contractuc "pawn-lending-backend/internal/usecase/contract"
	evaluationuc "pawn-lending-backend/internal/usecase/evaluation"
	loanuc "pawn-lending-backend/internal/usecase/loan"
	paymentuc "pawn-lending-backend/internal/usecase/payment"
	renewaluc "pawn-lending-backend/internal/usecase/renewal"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), log, db.ParseLogLevel(cfg.LogLevel))
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal("sql db", zap.Error(err))
	}
	limits := make([]application.CategoryLimit, len(cfg.CategoryLimits))
	for i, l := range cfg.CategoryLimits {
		limits[i] = application.CategoryLimit{Category: l.Category, MinPct: l.MinPct, MaxPct: l.MaxPct}
	}
	if err := mysql.Migrate(context.Background(), gdb, limits); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		log.Fatal("open redis", zap.Error(err))
	}
	defer rdb.Close()

	var notifier notify.Notifier = notify.LogNotifier{Log: log}
	if cfg.MailEnabled() {
		notifier = mail.NewNotifier(mail.Config{
			Host:   cfg.SMTPHost,
			Port:   cfg.SMTPPort,
			User:   cfg.SMTPUser,
			Pass:   cfg.SMTPPass,
			Sender: cfg.SMTPSender,
		}, notifier)
	}
	dispatcher := notify.NewDispatcher(notifier, log)

	var publisher *artifact.Publisher
	if cfg.StorageEnabled() {
		store, err := storage.NewObjectStore(storage.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			log.Fatal("object store", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = store.EnsureBucket(ctx)
		cancel()
		if err != nil {
			log.Fatal("ensure bucket", zap.Error(err))
		}
		publisher = artifact.NewPublisher(store, render.NewWorkbook())
	} else {
		log.Warn("S3_ENDPOINT not set, receipts and schedules will not be rendered")
	}

	remainder, _ := loan.ParseRemainderPolicy(cfg.Remainder)
	tx := mysql.NewGormUoW(gdb)

	apps := applicationuc.NewUsecase(tx, applicationuc.Settings{
		MinAmount:           cfg.LoanMinAmount,
		MaxAmount:           cfg.LoanMaxAmount,
		DefaultRate:         cfg.LoanDefaultRate,
		MaxTermMonths:       cfg.LoanMaxTermMonths,
		MaxOpenApplications: cfg.MaxOpenApplications,
	}, log)
	eval := evaluationuc.NewUsecase(tx, evaluationuc.Settings{
		MinAmount:     cfg.LoanMinAmount,
		MaxAmount:     cfg.LoanMaxAmount,
		MaxTermMonths: cfg.LoanMaxTermMonths,
	}, dispatcher, log)
	contracts := contractuc.NewUsecase(tx, contractuc.Settings{
		StorageFeePct: cfg.StorageFeePct,
		Remainder:     remainder,
	}, dispatcher, publisher, log)
	payments := paymentuc.NewUsecase(tx, dispatcher, publisher, log)
	renewals := renewaluc.NewUsecase(tx, renewaluc.Settings{
		MaxTermMonths: cfg.LoanMaxTermMonths,
		Remainder:     remainder,
	}, log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	httpadp.Routes{
		Health: httpadp.NewHandler(map[string]httpadp.Check{
			"mysql": sqlDB.PingContext,
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Applications: httpadp.NewApplicationHandler(apps, eval, contracts, log),
		Contracts:    httpadp.NewContractHandler(contracts, log),
		Loans:        httpadp.NewLoanHandler(loanuc.NewUsecase(tx), payments, renewals, log),
		Payments:     httpadp.NewPaymentHandler(payments, log),
		Audit:        httpadp.NewAuditHandler(audituc.NewUsecase(tx), log),
	}.Register(e,
		middleware.Identity(),
		middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log),
	)

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
