// Package integration detects optional collaborators once at startup.
// Missing capabilities are skipped without an error.
package integration

import (
	"context"
	"os"
	"sync"
	"time"

	"mt/internal/logger"
)

const (
	// DatabaseDSNEnv enables the database cleaner
	DatabaseDSNEnv = "MT_DATABASE_DSN"
	// NotifyEnv enables desktop notifications
	NotifyEnv = "MT_NOTIFY"
)

// detectTimeout bounds the database ping
const detectTimeout = 2 * time.Second

// Capabilities lists the detected integrations. A nil field is a missing
// capability.
type Capabilities struct {
	DatabaseCleaner *DatabaseCleaner
	Notifier        *Notifier
}

// Detect probes every integration. It runs once at startup; everything
// after reads the returned flags.
func Detect(ctx context.Context) Capabilities {
	caps := Capabilities{
		DatabaseCleaner: detectDatabaseCleaner(ctx),
		Notifier:        detectNotifier(),
	}
	logger.Debug("integrations detected", "database", caps.DatabaseCleaner != nil, "notifier", caps.Notifier != nil)
	return caps
}

// Close releases the resources held by detected integrations
func (c Capabilities) Close() error {
	if c.DatabaseCleaner != nil {
		return c.DatabaseCleaner.Close()
	}
	return nil
}

// detectDatabaseCleaner returns a cleaner when MT_DATABASE_DSN is set and
// the server answers.
func detectDatabaseCleaner(ctx context.Context) *DatabaseCleaner {
	dsn := os.Getenv(DatabaseDSNEnv)
	if dsn == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	cleaner, err := OpenDatabaseCleaner(ctx, dsn)
	if err != nil {
		logger.Debug("database cleaner disabled", "error", err)
		return nil
	}
	return cleaner
}

// detectNotifier returns a notifier when MT_NOTIFY is set and a
// notification command is installed.
func detectNotifier() *Notifier {
	if os.Getenv(NotifyEnv) == "" {
		return nil
	}
	n, ok := LookNotifier()
	if !ok {
		logger.Debug("notifier disabled", "reason", "no notification command on PATH")
		return nil
	}
	return n
}

var (
	sharedOnce sync.Once
	shared     Capabilities
)

// Shared detects the capabilities once per process. Test binaries use it
// so every suite shares one connection pool.
func Shared() Capabilities {
	sharedOnce.Do(func() {
		shared = Detect(context.Background())
	})
	return shared
}
