package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/trackademic/trackademic/internal/apiclient"
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/mongostore"
	"github.com/trackademic/trackademic/schema"
)

// StoreManager holds the process-wide repository.
type StoreManager struct {
	sync.RWMutex
	repo contract.Repository
}

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// Open connects to the backend named in cfg.
func Open(ctx context.Context, cfg *contract.Config) (contract.Repository, error) {
	switch cfg.Backend {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return NewSQLStore(cfg.Backend, cfg.DBConnect)

	case schema.MongoDBBackend:
		uri := mongostore.ExpandURI(cfg.DBConnect, os.Getenv("MONGO_PASSWORD"))
		return mongostore.New(ctx, uri, cfg.DBName, cfg.RequestTimeout)

	case schema.HTTPBackend:
		return apiclient.New(cfg.APIURL, cfg.AdminKey, cfg.RequestTimeout), nil

	case schema.MemoryBackend:
		return NewMemoryStore(contract.DemoDataset(time.Now().UTC())), nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}

// InitStore initializes the global repository once.
func InitStore(ctx context.Context, cfg *contract.Config) error {
	var initErr error

	initOnce.Do(func() {
		repo, err := Open(ctx, cfg)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize %s backend: %w", cfg.Backend, err)
			return
		}
		Manager.Lock()
		Manager.repo = repo
		Manager.Unlock()
	})

	return initErr
}

// GetRepository returns the global repository, or nil before InitStore succeeds.
func (m *StoreManager) GetRepository() contract.Repository {
	m.RLock()
	defer m.RUnlock()
	return m.repo
}

// CloseStore should be called on application shutdown.
func CloseStore() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.repo != nil {
			_ = Manager.repo.Close()
		}
	})
}

// ClearStore removes all stored data for the backend.
// For SQLite, it deletes the database file.
// For MySQL and PostgreSQL, it rolls back every migration.
// For MongoDB, it empties the collections.
func ClearStore(ctx context.Context, cfg *contract.Config) error {
	switch cfg.Backend {
	case schema.SQLiteBackend:
		dbFilePath := cfg.DBConnect
		if dbFilePath == "" {
			dbFilePath = contract.GetDBFilePath()
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return Migrate(cfg.Backend, cfg.DBConnect, 0, os.Stderr)

	case schema.MongoDBBackend:
		repo, err := Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = repo.Close() }()
		return repo.ResetAndSeed(ctx, schema.Dataset{})

	case schema.MemoryBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", cfg.Backend)
	}
}
