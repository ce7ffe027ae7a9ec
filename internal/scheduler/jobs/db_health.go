package jobs

import (
	"context"
	"time"

	"github.com/hyunwoo/stockgrid/pkg/database"
	"github.com/hyunwoo/stockgrid/pkg/logger"
)

// DBHealthJob periodically pings the database and logs pool statistics so a
// degrading store shows up in the logs before requests start failing.
type DBHealthJob struct {
	db     *database.DB
	logger *logger.Logger
}

// NewDBHealthJob creates a new database health job
func NewDBHealthJob(db *database.DB, log *logger.Logger) *DBHealthJob {
	return &DBHealthJob{
		db:     db,
		logger: log,
	}
}

// Name returns the job name
func (j *DBHealthJob) Name() string {
	return "db_health"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *DBHealthJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the health check
func (j *DBHealthJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	status, err := j.db.HealthCheck(ctx)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"response_time":  status.ResponseTime,
		"total_conns":    status.Stats.TotalConns,
		"idle_conns":     status.Stats.IdleConns,
		"acquired_conns": status.Stats.AcquiredConns,
	}).Info("Database health check")

	return nil
}
