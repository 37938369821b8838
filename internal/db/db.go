package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the GORM connection for users and archived standings. Live game
// state never touches SQL; it lives in the key-value store.
type DB struct {
	*gorm.DB
}

// Config selects the SQL backend. Driver "sqlite" uses DBName as the file
// path and is the default for local runs; "mysql" uses the full host config.
type Config struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// New opens the connection and migrates the schema.
func New(cfg Config) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var (
		conn *gorm.DB
		err  error
	)
	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
		conn, err = gorm.Open(mysql.Open(dsn), gormConfig)
	case "sqlite", "":
		path := cfg.DBName
		if path == "" {
			path = "pokerhub.db"
		}
		conn, err = gorm.Open(sqlite.Open(path), gormConfig)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.AutoMigrate(&User{}, &TournamentResult{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &DB{conn}, nil
}
