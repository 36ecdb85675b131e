package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/VoidMesh/worldstream/internal/logging"
)

// LoggingQueries wraps the generated Queries struct to add debug logging
type LoggingQueries struct {
	*Queries
	logger logging.LoggerInterface
}

// NewLoggingQueries creates a new LoggingQueries instance
func NewLoggingQueries(db DBTX, logger logging.LoggerInterface) *LoggingQueries {
	return &LoggingQueries{
		Queries: New(db),
		logger:  logger.With("component", "db"),
	}
}

// WithTx creates a new LoggingQueries with a transaction
func (lq *LoggingQueries) WithTx(tx *sql.Tx) *LoggingQueries {
	return &LoggingQueries{
		Queries: lq.Queries.WithTx(tx),
		logger:  lq.logger,
	}
}

func (lq *LoggingQueries) logQuery(queryName string, start time.Time, err error, args ...interface{}) {
	duration := time.Since(start)

	if err != nil {
		lq.logger.Debug("Database query failed",
			"query", queryName,
			"duration", duration,
			"error", err,
			"args", args,
		)
	} else {
		lq.logger.Debug("Database query executed",
			"query", queryName,
			"duration", duration,
			"args", args,
		)
	}
}

// UnlockRegion with logging
func (lq *LoggingQueries) UnlockRegion(ctx context.Context, regionID string) error {
	start := time.Now()
	lq.logger.Debug("Executing UnlockRegion", "region", regionID)

	err := lq.Queries.UnlockRegion(ctx, regionID)
	lq.logQuery("UnlockRegion", start, err, regionID)
	return err
}

// LockRegion with logging
func (lq *LoggingQueries) LockRegion(ctx context.Context, regionID string) (int64, error) {
	start := time.Now()
	lq.logger.Debug("Executing LockRegion", "region", regionID)

	result, err := lq.Queries.LockRegion(ctx, regionID)
	lq.logQuery("LockRegion", start, err, regionID)

	if err == nil {
		lq.logger.Debug("LockRegion result", "rows_affected", result)
	}

	return result, err
}

// ListUnlockedRegions with logging
func (lq *LoggingQueries) ListUnlockedRegions(ctx context.Context) ([]RegionUnlock, error) {
	start := time.Now()
	lq.logger.Debug("Executing ListUnlockedRegions")

	result, err := lq.Queries.ListUnlockedRegions(ctx)
	lq.logQuery("ListUnlockedRegions", start, err)

	if err == nil {
		lq.logger.Debug("ListUnlockedRegions result", "region_count", len(result))
	}

	return result, err
}

// IsRegionUnlocked with logging
func (lq *LoggingQueries) IsRegionUnlocked(ctx context.Context, regionID string) (int64, error) {
	start := time.Now()
	lq.logger.Debug("Executing IsRegionUnlocked", "region", regionID)

	result, err := lq.Queries.IsRegionUnlocked(ctx, regionID)
	lq.logQuery("IsRegionUnlocked", start, err, regionID)
	return result, err
}
