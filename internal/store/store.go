// Package store opens the configured persistence backend and exposes its repositories.
package store

import (
	"context"
	"fmt"
	"time"

	"golang-market-intel/internal/executor/repository"
	"golang-market-intel/pkg/config"
	"golang-market-intel/pkg/logger"
	"golang-market-intel/pkg/mongodb"
	"golang-market-intel/pkg/postgres"
)

// Store holds the repositories of one backend.
type Store struct {
	News  repository.NewsItemRepository
	Runs  repository.RunHistoryRepository
	close func(ctx context.Context) error
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to postgres or mongo according to storeCfg.Driver.
func Open(ctx context.Context, storeCfg config.Store, dbCfg config.Database, mongoCfg config.Mongo, log *logger.Logger) (*Store, error) {
	switch storeCfg.Driver {
	case "", "postgres":
		db, err := postgres.NewDB(postgres.Config{
			Host:            dbCfg.Host,
			Port:            dbCfg.Port,
			User:            dbCfg.User,
			Password:        dbCfg.Password,
			DBName:          dbCfg.DBName,
			SSLMode:         dbCfg.SSLMode,
			TimeZone:        dbCfg.TimeZone,
			MaxIdleConns:    dbCfg.MaxIdleConns,
			MaxOpenConns:    dbCfg.MaxOpenConns,
			ConnMaxLifetime: dbCfg.ConnMaxLifetime,
			LogLevel:        dbCfg.LogLevel,
		})
		if err != nil {
			return nil, err
		}
		log.Info("Connected to postgres", logger.StringField("host", dbCfg.Host), logger.StringField("database", dbCfg.DBName))

		return &Store{
			News: repository.NewNewsItemRepository(db.DB),
			Runs: repository.NewRunHistoryRepository(db.DB),
			close: func(context.Context) error {
				sqlDB, err := db.DB.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		}, nil

	case "mongo":
		var timeout time.Duration
		if mongoCfg.ConnectTimeout != "" {
			d, err := time.ParseDuration(mongoCfg.ConnectTimeout)
			if err != nil {
				return nil, fmt.Errorf("invalid mongo.connect_timeout: %w", err)
			}
			timeout = d
		}
		client, err := mongodb.NewClient(ctx, mongodb.Config{
			URI:            mongoCfg.URI,
			Database:       mongoCfg.Database,
			ConnectTimeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		log.Info("Connected to mongo", logger.StringField("database", mongoCfg.Database))

		news, err := repository.NewNewsItemMongoRepository(ctx, client.DB)
		if err != nil {
			_ = client.Close(context.Background())
			return nil, err
		}
		return &Store{
			News:  news,
			Runs:  repository.NewRunHistoryMongoRepository(client.DB),
			close: client.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", storeCfg.Driver)
	}
}
