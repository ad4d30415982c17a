// Package pipeline drives one full extract → transform → load cycle.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	conf "github.com/soeborg/bikestore-etl/internal/config"
	"github.com/soeborg/bikestore-etl/internal/db"
	"github.com/soeborg/bikestore-etl/internal/extract"
	"github.com/soeborg/bikestore-etl/internal/load"
	"github.com/soeborg/bikestore-etl/internal/transform"
)

type Pipeline struct {
	log zerolog.Logger
	cfg *conf.Config
	db  *gorm.DB
	mu  sync.Mutex // one run at a time
}

func New(log zerolog.Logger, cfg *conf.Config, gdb *gorm.DB) *Pipeline {
	return &Pipeline{log: log, cfg: cfg, db: gdb}
}

// Result summarizes one completed run.
type Result struct {
	RunID      string
	RowsLoaded int
	Duration   time.Duration
	Duplicates int
}

// Run executes one full cycle. Any core failure aborts the run with
// nothing committed; the etl_runs row keeps the error for inspection.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	run := db.EtlRun{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Status:    "running",
	}
	if err := p.db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, fmt.Errorf("recording run: %w", err)
	}
	log := p.log.With().Str("run_id", run.RunID).Logger()

	res, err := p.runOnce(ctx, log, &run)

	now := time.Now().UTC()
	run.FinishedAt = &now
	if err != nil {
		run.Status = "error"
		run.LastError = err.Error()
	} else {
		run.Status = "done"
		run.RowsLoaded = res.RowsLoaded
	}
	if uerr := p.db.WithContext(ctx).Save(&run).Error; uerr != nil {
		log.Error().Err(uerr).Msg("updating run status")
	}

	if err != nil {
		log.Error().Err(err).Msg("pipeline failed")
		return nil, err
	}
	log.Info().Int("rows", res.RowsLoaded).Dur("took", res.Duration).Msg("pipeline done")
	return res, nil
}

func (p *Pipeline) runOnce(ctx context.Context, log zerolog.Logger, run *db.EtlRun) (*Result, error) {
	start := time.Now()

	rawTables, files, err := extract.ReadAll(log, p.cfg.CSV)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	for _, f := range files {
		rec := db.SourceFile{
			RunID:     run.RunID,
			TableName: f.Table,
			Path:      f.Path,
			SHA256:    f.SHA256,
			SizeBytes: f.SizeBytes,
			Rows:      f.Rows,
		}
		if err := p.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return nil, fmt.Errorf("recording source file %s: %w", f.Path, err)
		}
	}

	tables, err := transform.Normalize(rawTables)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	for _, d := range tables.Duplicates {
		log.Warn().Str("kind", d.Kind).Str("name", d.Name).Int("extra", d.Count).
			Msg("duplicate lookup name, last occurrence wins")
	}

	summary := transform.BuildOrderSummary(tables)

	rows, err := load.Replace(ctx, p.db, tables, summary)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	return &Result{
		RunID:      run.RunID,
		RowsLoaded: rows,
		Duration:   time.Since(start),
		Duplicates: len(tables.Duplicates),
	}, nil
}
