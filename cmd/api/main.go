package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"shoecatalog/internal/config"
	"shoecatalog/internal/handler"
	"shoecatalog/internal/infra/db"
	infraRepo "shoecatalog/internal/infra/repository"
	"shoecatalog/internal/notify"
	"shoecatalog/internal/server"
	"shoecatalog/internal/usecase"
	"shoecatalog/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	//.envは無くてもよい（本番は環境変数を直接渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.MustNew(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.App.Environment == "development",
	})
	defer func() { _ = log.Sync() }()
	logger.SetGlobal(log)

	//DB接続
	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal("db connect failed", "driver", cfg.DB.Driver, "error", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("db migrate failed", "error", err)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	fileRepo := infraRepo.NewProductFileGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//Usecase生成
	sender := notify.New(cfg.Mail, log)
	readUC := usecase.NewProductReadUsecase(productRepo, fileRepo)
	writeUC := usecase.NewProductWriteUsecase(txManager, productRepo, readUC, sender, log)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//Handler生成
	srv := server.New(cfg.Server, log)
	srv.RegisterRoutes(cfg.Auth, server.Handlers{
		Product:      handler.NewProductHandler(readUC),
		AdminProduct: handler.NewAdminProductHandler(writeUC),
		AdminAudit:   handler.NewAdminAuditLogHandler(auditUC),
	})

	//Server起動（SIGINT/SIGTERMで停止）
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting", "app", cfg.App.Name, "env", cfg.App.Environment, "port", cfg.Server.Port, "db", cfg.DB.Driver)
	if err := srv.Start(ctx); err != nil {
		log.Fatal("server stopped", "error", err)
	}
	log.Info("bye")
}
