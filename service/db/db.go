package db

import (
	"context"
	"fmt"
	"time"

	"coalhub/service/etc"
	"coalhub/service/store"

	"github.com/go-redis/redis/v9"
	gormloggerlogrus "github.com/nekomeowww/gorm-logger-logrus"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getDSNFromConfig(c *etc.Configuration) string {
	conf := c.Database.Postgres
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		conf.Host, conf.Port, conf.User, conf.Password, conf.DBName)
	if !conf.UseSSL {
		dsn += " sslmode=disable"
	}
	return dsn
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormloggerlogrus.New(gormloggerlogrus.Options{
			Logger:                    log.NewEntry(log.StandardLogger()),
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			SlowThreshold:             time.Millisecond * 200,
			FileWithLineNumField:      "file",
		}),
	}
}

func openPostgres(c *etc.Configuration) (store.Store, error) {
	pdb, err := gorm.Open(postgres.Open(getDSNFromConfig(c)), gormConfig())
	if err != nil {
		return nil, errors.Wrap(err, "postgres connection failed")
	}
	s, err := store.NewGorm(pdb)
	if err != nil {
		return nil, err
	}
	log.Info("Postgres connected")
	return s, nil
}

func openSQLite(c *etc.Configuration) (store.Store, error) {
	sdb, err := gorm.Open(sqlite.Open(c.Database.SQLite.Path), gormConfig())
	if err != nil {
		return nil, errors.Wrap(err, "sqlite open failed")
	}
	s, err := store.NewGorm(sdb)
	if err != nil {
		return nil, err
	}
	log.WithField("path", c.Database.SQLite.Path).Info("SQLite opened")
	return s, nil
}

func openRedis(ctx context.Context, c *etc.Configuration) (store.Store, error) {
	conf := c.Database.Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis connection failed")
	}
	log.WithField("addr", conf.Addr).Info("Redis connected")
	return store.NewRedis(rdb, conf.Prefix), nil
}

// Open connects to the record store selected by database.type.
func Open(ctx context.Context, c *etc.Configuration) (store.Store, error) {
	switch c.Database.Type {
	case "memory":
		log.Warning("Using in-memory record store, records are lost on exit")
		return store.NewMemory(), nil
	case "postgres":
		return openPostgres(c)
	case "sqlite":
		return openSQLite(c)
	case "redis":
		return openRedis(ctx, c)
	default:
		return nil, fmt.Errorf("unknown database type %q", c.Database.Type)
	}
}
