package db

import (
	"fmt"
	"strings"

	"shoecatalog/internal/config"
	"shoecatalog/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 商品IDの開始値（postgresのみ）
const productIDOffset = 1000

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	switch cfg.Driver {
	case "sqlite":
		return gorm.Open(sqlite.Open(sqliteDSN(cfg.SQLitePath)), gcfg)
	case "postgres", "":
		return gorm.Open(postgres.Open(cfg.DSN()), gcfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

// sqliteのFKは接続ごとに有効化が必要なのでDSNで指定する
func sqliteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys=") || strings.Contains(path, "_fk=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=1"
}

// Migrate はテーブルを作成/更新する。
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "sqlite" {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return err
		}
	}

	if err := db.AutoMigrate(
		&model.Product{},
		&model.ProductModel{},
		&model.ProductImage{},
		&model.ProductFile{},
		&model.AuditLog{},
	); err != nil {
		return err
	}

	//空のテーブルなら次のIDが1000から始まるようにする
	if db.Dialector.Name() == "postgres" {
		return db.Exec(
			"SELECT setval(pg_get_serial_sequence('products', 'id'), GREATEST((SELECT COALESCE(MAX(id), 0) FROM products), ?))",
			productIDOffset-1,
		).Error
	}
	return nil
}
