package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Death-Raider13/CAPS-TEAM/app/repository"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/cache"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/env"
	"github.com/spf13/afero"
	"google.golang.org/api/option"
)

const (
	StoreGorm      = "gorm"
	StoreFile      = "file"
	StoreFirestore = "firestore"
)

// StoreDriver returns the configured record store. Without an explicit
// STORE_DRIVER the relational store is used when a database is configured,
// the flat file otherwise.
func StoreDriver() string {
	if driver := env.GetEnv("STORE_DRIVER", ""); driver != "" {
		return driver
	}
	if env.GetEnv("DATABASE_URL", "") != "" || env.GetEnv("DB_HOST", "") != "" {
		return StoreGorm
	}
	return StoreFile
}

// OpenFirestore creates a Firestore client from the environment
func OpenFirestore(ctx context.Context) (*firestore.Client, error) {
	projectID := env.GetEnv("FIRESTORE_PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_ID is required for the firestore store")
	}
	var opts []option.ClientOption
	if file := env.GetEnv("FIRESTORE_CREDENTIALS_FILE", ""); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}
	return firestore.NewClient(ctx, projectID, opts...)
}

// SetupStore builds the repositories for the configured store and wraps
// them with the list cache when redis is available.
func SetupStore(ctx context.Context) (*repository.Repositories, error) {
	var repos *repository.Repositories

	switch driver := StoreDriver(); driver {
	case StoreGorm:
		SetupDatabase()
		repos = repository.NewRepositories(GetDB())
	case StoreFile:
		path := env.GetEnv("DATA_FILE", "data.json")
		repos = repository.NewFileRepositories(afero.NewOsFs(), path)
	case StoreFirestore:
		client, err := OpenFirestore(ctx)
		if err != nil {
			return nil, err
		}
		repos = repository.NewFirestoreRepositories(client)
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", driver)
	}
	log.Printf("Record store: %s", StoreDriver())

	if cache.Available() {
		ttl := time.Duration(env.GetInt("LIST_CACHE_TTL_SECONDS", 60)) * time.Second
		repos = repos.WithListCache(cache.GetClient(), ttl)
	}
	return repos, nil
}
