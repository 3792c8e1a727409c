package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yeremiapane/hospital-app/database"
	"github.com/yeremiapane/hospital-app/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port                  string   `mapstructure:"PORT"`
	GinMode               string   `mapstructure:"GIN_MODE"`
	LogLevel              string   `mapstructure:"LOG_LEVEL"`
	LogFormat             string   `mapstructure:"LOG_FORMAT"`
	DBDriver              string   `mapstructure:"DB_DRIVER"`
	MySQLDSN              string   `mapstructure:"MYSQL_DSN"`
	SQLitePath            string   `mapstructure:"SQLITE_PATH"`
	DBMaxOpenConns        int      `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns        int      `mapstructure:"DB_MAX_IDLE_CONNS"`
	MongoURI              string   `mapstructure:"MONGODB_URI"`
	MongoDatabase         string   `mapstructure:"MONGODB_DATABASE"`
	MongoConnectTimeout   int      `mapstructure:"MONGODB_CONNECT_TIMEOUT_SECONDS"`
	JWTSecret             string   `mapstructure:"JWT_SECRET"`
	JWTTTLHours           int      `mapstructure:"JWT_TTL_HOURS"`
	RedisAddr             string   `mapstructure:"REDIS_ADDR"`
	CORSOrigins           []string `mapstructure:"CORS_ORIGINS"`
	RateLimitPerSecond    float64  `mapstructure:"RATE_LIMIT_PER_SECOND"`
	ShutdownTimeoutSecond int      `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
	AutoMigrate           bool     `mapstructure:"AUTO_MIGRATE"`
}

var keys = []string{
	"PORT", "GIN_MODE", "LOG_LEVEL", "LOG_FORMAT",
	"DB_DRIVER", "MYSQL_DSN", "SQLITE_PATH", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"MONGODB_URI", "MONGODB_DATABASE", "MONGODB_CONNECT_TIMEOUT_SECONDS",
	"JWT_SECRET", "JWT_TTL_HOURS", "REDIS_ADDR", "CORS_ORIGINS",
	"RATE_LIMIT_PER_SECOND", "SHUTDOWN_TIMEOUT_SECONDS", "AUTO_MIGRATE",
}

// Load reads envFile (when it exists) into the process environment and
// resolves the configuration from environment variables over defaults.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			utils.InfoLogger.Debugf("No env file loaded from %s: %v", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("DB_DRIVER", database.DialectMySQL)
	v.SetDefault("SQLITE_PATH", "hospital.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("MONGODB_DATABASE", "hospital")
	v.SetDefault("MONGODB_CONNECT_TIMEOUT_SECONDS", 10)
	v.SetDefault("JWT_TTL_HOURS", 24)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_PER_SECOND", 50)
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 15)
	v.SetDefault("AUTO_MIGRATE", false)

	// Unmarshal only sees env vars that are bound explicitly.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitOrigins(v.GetString("CORS_ORIGINS"))
	return cfg, nil
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case database.DialectMySQL:
		if c.MySQLDSN == "" {
			return errors.New("MYSQL_DSN is required when DB_DRIVER is mysql")
		}
	case database.DialectSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when DB_DRIVER is sqlite")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", database.DialectMySQL, database.DialectSQLite, c.DBDriver)
	}

	if c.IsRelease() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in release mode")
	}
	if c.JWTTTLHours <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive, got %d", c.JWTTTLHours)
	}
	if c.DBMaxOpenConns <= 0 || c.DBMaxIdleConns < 0 {
		return fmt.Errorf("invalid pool size: open=%d idle=%d", c.DBMaxOpenConns, c.DBMaxIdleConns)
	}
	if c.RateLimitPerSecond <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND must be positive, got %v", c.RateLimitPerSecond)
	}
	if c.ShutdownTimeoutSecond <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must be positive, got %d", c.ShutdownTimeoutSecond)
	}
	return nil
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSecond) * time.Second
}

func (c *Config) MongoTimeout() time.Duration {
	return time.Duration(c.MongoConnectTimeout) * time.Second
}

// InitDB opens the relational store selected by DB_DRIVER and applies the
// pool limits.
func InitDB(c *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.DBDriver {
	case database.DialectMySQL:
		dialector = mysql.Open(c.MySQLDSN)
	case database.DialectSQLite:
		dialector = sqlite.Open(c.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	gormLogger := logger.Default.LogMode(logger.Warn)
	if c.IsRelease() {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger, TranslateError: true})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(c.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(c.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if c.DBDriver == database.DialectSQLite {
		// sqlite serializes writers.
		sqlDB.SetMaxOpenConns(1)
	}

	utils.InfoLogger.WithField("driver", c.DBDriver).Info("Database connected")
	return db, nil
}
