// cmd/menuadmin/store.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/deploymenttheory/go-menu-admin-client/tokenstore"
	"github.com/deploymenttheory/go-menu-admin-client/tokenstore/filestore"
	"github.com/deploymenttheory/go-menu-admin-client/tokenstore/redisstore"
	"github.com/deploymenttheory/go-menu-admin-client/tokenstore/sqlitestore"
	"github.com/redis/go-redis/v9"
)

// Environment variables selecting where the refresh token is kept.
const (
	EnvTokenStoreDriver = "TOKEN_STORE_DRIVER"
	EnvTokenStorePath   = "TOKEN_STORE_PATH"
	EnvRedisAddr        = "REDIS_ADDR"
	EnvRedisPassword    = "REDIS_PASSWORD"
	EnvRedisDB          = "REDIS_DB"
	EnvRedisPrefix      = "REDIS_KEY_PREFIX"
)

const (
	driverFile   = "file"
	driverSQLite = "sqlite"
	driverRedis  = "redis"
)

func noopClose() error { return nil }

// openPersistentStore opens the configured persistent scope. The returned func releases it.
func openPersistentStore(ctx context.Context) (tokenstore.PersistentStore, func() error, error) {
	driver := envOr(EnvTokenStoreDriver, driverFile)

	switch driver {
	case driverFile:
		path, err := storePath("tokens.json")
		if err != nil {
			return nil, nil, err
		}
		return filestore.New(path), noopClose, nil

	case driverSQLite:
		path, err := storePath("tokens.db")
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create token store directory: %w", err)
		}
		store, err := sqlitestore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case driverRedis:
		db, err := strconv.Atoi(envOr(EnvRedisDB, "0"))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid %s: %w", EnvRedisDB, err)
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     envOr(EnvRedisAddr, "localhost:6379"),
			Password: os.Getenv(EnvRedisPassword),
			DB:       db,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return redisstore.New(rdb, envOr(EnvRedisPrefix, "menuadmin")), rdb.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown %s %q, expected %s, %s or %s",
			EnvTokenStoreDriver, driver, driverFile, driverSQLite, driverRedis)
	}
}

// storePath returns TOKEN_STORE_PATH, or name under the user config directory.
func storePath(name string) (string, error) {
	if path := os.Getenv(EnvTokenStorePath); path != "" {
		return path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory, set %s: %w", EnvTokenStorePath, err)
	}
	return filepath.Join(dir, "menuadmin", name), nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
