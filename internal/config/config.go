// Package config はアプリ全体の設定を読み込む。
//
// 優先順位（高い順）:
//  1. 環境変数（CATALOG_ プレフィックス。例: CATALOG_DB_HOST）
//  2. 設定ファイル config.yaml（任意）
//  3. 既定値
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configはアプリ全体の設定
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	Log    LogConfig    `mapstructure:"log"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Mail   MailConfig   `mapstructure:"mail"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development / production
}

type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	BodyLimit          string        `mapstructure:"body_limit"` // echoの書式（例: 2M）
	RateLimit          float64       `mapstructure:"rate_limit"` // 1秒あたりのリクエスト数（IPごと）
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

type DBConfig struct {
	Driver     string `mapstructure:"driver"` // postgres / sqlite
	URL        string `mapstructure:"url"`    // あれば最優先
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DSN はpostgres用の接続文字列
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug / info / warn / error
	Format string `mapstructure:"format"` // json / console
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"` // JWT署名シークレット
}

// MailConfig は新規登録通知の送信先。Enabledがfalseならログ出力だけ。
type MailConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	From    string `mapstructure:"from"`
	To      string `mapstructure:"to"`
	// 接続から送信完了までの上限
	Timeout time.Duration `mapstructure:"timeout"`
}

// Loadは設定ファイルと環境変数から設定を読む
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("db.url", "DATABASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "shoecatalog")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.body_limit", "2M")
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.url", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "shoe")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.sqlite_path", "shoe.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", 25)
	v.SetDefault("mail.from", "catalog@localhost")
	v.SetDefault("mail.to", "admin@localhost")
	v.SetDefault("mail.timeout", "10s")
}

// 必須チェック
func (c Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required (CATALOG_AUTH_JWT_SECRET)")
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("db.driver must be postgres or sqlite: %q", c.DB.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive: %d", c.Server.Port)
	}
	return nil
}
