package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	connectTimeout  = 10 * time.Second
	maxOpenConns    = 20
	connMaxLifetime = 30 * time.Minute
)

// DB holds the database connections
type DB struct {
	Postgres *gorm.DB
	Mongo    *mongo.Client
}

// InitDB initializes and returns the database connections
func InitDB(cfg *Config) (*DB, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable not set")
	}

	postgresDB, err := InitPostgres(cfg)
	if err != nil {
		return nil, err
	}

	mongoClient, err := initMongo(cfg.MongoURI)
	if err != nil {
		closePostgres(postgresDB)
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	return &DB{
		Postgres: postgresDB,
		Mongo:    mongoClient,
	}, nil
}

// InitPostgres opens the relational store only. The admin CLI needs nothing else.
func InitPostgres(cfg *Config) (*gorm.DB, error) {
	if cfg.PostgresUrl == "" {
		return nil, fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
	}

	level := gormlogger.Warn
	if !cfg.IsProduction() {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.PostgresUrl), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxOpenConns / 2)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		closePostgres(db)
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	zap.L().Info("Successfully connected to PostgreSQL")
	return db, nil
}

// initMongo connects and waits for a primary to answer.
func initMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetAppName("campushub").
		SetServerSelectionTimeout(connectTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	zap.L().Info("Successfully connected to MongoDB")
	return client, nil
}

func closePostgres(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		zap.L().Error("Error getting SQL DB from GORM", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		zap.L().Error("Error closing PostgreSQL connection", zap.Error(err))
		return
	}
	zap.L().Info("PostgreSQL connection closed")
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		closePostgres(db.Postgres)
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			zap.L().Error("Error closing MongoDB connection", zap.Error(err))
		} else {
			zap.L().Info("MongoDB connection closed")
		}
	}
}
