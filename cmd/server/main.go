package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"toll-chain.backend/internal/config"
	"toll-chain.backend/internal/infrastructure/blockchain"
	"toll-chain.backend/internal/infrastructure/jobs"
	"toll-chain.backend/internal/infrastructure/repositories"
	"toll-chain.backend/internal/interfaces/http/handlers"
	"toll-chain.backend/internal/interfaces/http/middleware"
	"toll-chain.backend/internal/usecases"
	"toll-chain.backend/pkg/logger"
	"toll-chain.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer    = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB     = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	getEVMClient = func(f *blockchain.ClientFactory, rpcURL string) (*blockchain.EVMClient, error) {
		return f.GetEVMClient(rpcURL)
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	redisAvailable := true
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Warn(context.Background(), "Redis unavailable; replay guard and scan cooldown disabled", zap.Error(err))
		redisAvailable = false
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("Database not available: %v (transaction log endpoints will return errors)", err)
	} else {
		log.Println("Connected to PostgreSQL via GORM")
	}

	// Repositories
	tollTxRepo := repositories.NewTollTransactionRepository(db)

	// Blockchain client and gateway
	clientFactory := blockchain.NewClientFactory()
	evmClient, err := getEVMClient(clientFactory, cfg.Blockchain.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to chain RPC %s: %w", cfg.Blockchain.RPCURL, err)
	}
	gateway := usecases.NewContractGateway(evmClient, cfg.Blockchain)

	// Guards
	var guards *redis.GuardStore
	if redisAvailable {
		guards = redis.NewGuardStore(0, 0)
	}

	// Usecases
	validator := usecases.NewQRValidator(gateway, cfg.Validation.QRExpiry, cfg.Validation.AllowUnverifiedSigner)
	balances := usecases.NewBalanceResolver(gateway)
	var replayGuard usecases.ReplayGuard
	if guards != nil {
		replayGuard = guards
	}
	submitter := usecases.NewPaymentSubmitter(gateway, replayGuard)

	operatorAddress := ""
	var issuer handlers.QRIssuer
	if cfg.Blockchain.OperatorPrivateKey != "" {
		signer, signerErr := usecases.NewQRSigner(cfg.Blockchain.OperatorPrivateKey)
		if signerErr != nil {
			return fmt.Errorf("invalid operator private key: %w", signerErr)
		}
		operatorAddress = signer.Address()
		issuer = signer
	}
	processor := usecases.NewTollProcessor(validator, balances, submitter, gateway, tollTxRepo, operatorAddress)

	// Handlers
	tollHandler := handlers.NewTollHandler(processor, gateway, balances, issuer)
	var cooldown handlers.ScanCooldown
	if guards != nil {
		cooldown = guards
	}
	hardwareHandler := handlers.NewHardwareHandler(gateway, cooldown)

	// Background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expiryJob := jobs.NewTollTransactionExpiryJob(tollTxRepo)
	go expiryJob.Start(ctx)

	// Router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		tollHandler:     tollHandler,
		hardwareHandler: hardwareHandler,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		expiryJob.Stop()
		cancel()
	}()

	log.Printf("Toll-Chain backend starting on port %s", cfg.Server.Port)
	log.Printf("API: http://localhost:%s/api/v1", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
