// Package app holds the process plumbing shared by the energylog
// programs: configuration, logging, the InfluxDB connection, the run
// journal, run metrics and the exit code.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pisolar/energylog/internal/failure"
	"github.com/pisolar/energylog/internal/infrastructure/config"
	"github.com/pisolar/energylog/internal/infrastructure/database"
	"github.com/pisolar/energylog/internal/infrastructure/influxdb"
	"github.com/pisolar/energylog/internal/infrastructure/logging"
	"github.com/pisolar/energylog/internal/journal"
	"github.com/pisolar/energylog/internal/runmetrics"
	"github.com/pisolar/energylog/internal/writer"

	_ "github.com/pisolar/energylog/migrations"
)

// DefaultConfigPath is used when ENERGYLOG_CONFIG is unset.
const DefaultConfigPath = "configs/config.yaml"

// Build identifies the binary. Fields are set at build time via ldflags.
type Build struct {
	Version string
	Commit  string
	Date    string
}

// Env is what a job gets to work with.
type Env struct {
	Config *config.Config
	Log    *logging.Logger
	Policy *failure.Policy
	Writer *writer.Writer
}

// Job runs one collection cycle and returns its tally.
type Job func(ctx context.Context, env *Env) failure.Tally

// Program describes one binary.
type Program struct {
	Name     string
	Build    Build
	Validate func(*config.Config) error
	Job      Job
}

// Main runs p and returns the process exit code.
func Main(p Program) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	code, err := run(ctx, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return code
}

// ConfigPath returns the configuration file path from ENERGYLOG_CONFIG.
func ConfigPath() string {
	if path := os.Getenv("ENERGYLOG_CONFIG"); path != "" {
		return path
	}
	return DefaultConfigPath
}

// run only returns an error when the job could not be started.
func run(ctx context.Context, p Program) (int, error) {
	log := logging.Default(p.Name)

	configPath := ConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return 1, fmt.Errorf("loading config: %w", err)
	}
	if p.Validate != nil {
		if err := p.Validate(cfg); err != nil {
			return 1, err
		}
	}

	log = logging.New(cfg.Logging, p.Name, p.Build.Version)
	log.Info("starting",
		"version", p.Build.Version,
		"commit", p.Build.Commit,
		"build_date", p.Build.Date,
		"config", configPath,
	)

	policy := failure.NewPolicy(log)

	influx := connectInflux(ctx, cfg, policy, log)
	defer func() {
		if influx == nil {
			return
		}
		if err := influx.Close(); err != nil {
			log.Error("error closing InfluxDB", "error", err)
		}
	}()

	// A nil *influxdb.Client must reach the writer as a nil interface.
	var store writer.Store
	if influx != nil {
		store = influx
	}

	env := &Env{
		Config: cfg,
		Log:    log,
		Policy: policy,
		Writer: writer.New(store, cfg.InfluxDB.Measurement, cfg.InfluxDB.InverterTag, policy, log),
	}

	started := time.Now()
	tally := p.Job(ctx, env)
	finished := time.Now()

	log.Info("run complete",
		"written", tally.Written,
		"errors", tally.Errors(),
		"outcome", string(journal.OutcomeOf(tally)),
		"duration", finished.Sub(started).String(),
	)

	recordJournal(ctx, cfg.Journal, journal.NewRun(p.Name, started, finished, tally), log)
	writeMetrics(cfg.MetricsTextfile(p.Name), p.Name, started, finished, tally, log)

	return ExitCode(cfg.Run, tally), nil
}

// ExitCode is 0 unless fail_on_total_failure is set and the run wrote
// nothing while logging at least one failure.
func ExitCode(rc config.RunConfig, t failure.Tally) int {
	if rc.FailOnTotalFailure && t.TotalFailure() {
		return 1
	}
	return 0
}

// connectInflux returns nil when the store is disabled or unreachable.
// Unreachable is logged as a store failure; the run continues and each
// write is then logged as having no client.
func connectInflux(ctx context.Context, cfg *config.Config, policy *failure.Policy, log *logging.Logger) *influxdb.Client {
	if !cfg.InfluxDB.Enabled {
		log.Warn("influxdb disabled, points will not be stored")
		return nil
	}

	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
	if err != nil {
		policy.Handle("connect influxdb", failure.Store("influxdb connect", err))
		return nil
	}
	log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", client.Bucket())
	return client
}

func recordJournal(ctx context.Context, cfg config.JournalConfig, run *journal.Run, log *logging.Logger) {
	if !cfg.Enabled {
		return
	}

	// The run may have been cancelled; the journal row is still wanted.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := writeJournal(ctx, cfg, run, log.With("component", "journal")); err != nil {
		log.Error("recording run in journal failed", "path", cfg.Path, "error", err)
		return
	}
	log.Debug("run recorded", "id", run.ID, "path", cfg.Path)
}

func writeJournal(ctx context.Context, cfg config.JournalConfig, run *journal.Run, log *logging.Logger) (err error) {
	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, db.Close())
	}()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	repo := journal.NewSQLiteRepository(db.DB)
	logPrevious(ctx, repo, run.Program, log)
	return repo.Record(ctx, run)
}

// logPrevious logs how the last recorded run of program went.
func logPrevious(ctx context.Context, repo journal.Repository, program string, log *logging.Logger) {
	runs, err := repo.Recent(ctx, program, 1)
	if err != nil {
		log.Warn("reading previous run failed", "error", err)
		return
	}
	if len(runs) == 0 {
		log.Debug("no previous run recorded", "program", program)
		return
	}

	prev := runs[0]
	log.Info("previous run",
		"id", prev.ID,
		"finished_at", prev.FinishedAt.Format(time.RFC3339),
		"written", prev.Written,
		"outcome", string(prev.Outcome),
	)
}

func writeMetrics(path, program string, started, finished time.Time, t failure.Tally, log *logging.Logger) {
	if path == "" {
		return
	}

	rec := runmetrics.New(program)
	rec.Observe(started, finished, t)
	if err := rec.WriteTextfile(path); err != nil {
		log.Error("writing run metrics failed", "path", path, "error", err)
	}
}
