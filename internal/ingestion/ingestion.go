package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/polypulse/internal/domain/models"
	"github.com/guttosm/polypulse/internal/logger"
	"github.com/guttosm/polypulse/internal/storage"
)

const (
	fileSuffix       = ".csv"
	defaultBatchSize = 5000
	maxParallelFiles = 8
)

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.ObservationsRepository {
	return storage.NewObservationsRepository(db)
}

// Load reads observations from path, which is either a single CSV file or a
// directory of CSV files (see LoadDirectory).
func Load(ctx context.Context, path string, parallel int) ([]models.Observation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat failed for %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadDirectory(ctx, path, parallel)
	}
	return LoadFile(ctx, path)
}

// LoadDirectory parses every *.csv file in dir concurrently and returns all
// observations concatenated in file-name order, so the result does not
// depend on scheduling.
//
// Behavior:
//   - Uses a concurrency limit of min(8, NumCPU) unless parallel > 0.
//   - If any file returns an error, cancels the rest and returns that error.
//   - A directory without CSV files is an error.
func LoadDirectory(ctx context.Context, dir string, parallel int) ([]models.Observation, error) {
	files, err := csvFiles(dir)
	if err != nil {
		return nil, err
	}

	log := logger.Component("loader")
	maxParallel := clampParallel(parallel)
	log.Info().Int("files", len(files)).Str("dir", dir).Int("max_parallel", maxParallel).Msg("load start")

	results := make([][]models.Observation, len(files))

	// errgroup will cancel siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

	for i, file := range files {
		idx := i
		f := file
		sem <- struct{}{}

		g.Go(func() error {
			defer func() { <-sem }()
			start := time.Now()

			obs, err := LoadFile(gctx, f)
			if err != nil {
				log.Error().Str("file", filepath.Base(f)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", f, err)
			}
			results[idx] = obs
			log.Debug().Int("idx", idx+1).Int("total", len(files)).Str("file", filepath.Base(f)).Int("rows", len(obs)).Dur("elapsed", time.Since(start)).Msg("file loaded")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, r := range results {
		total += len(r)
	}
	out := make([]models.Observation, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// IngestPath copies the raw panel rows found at path (a file or a directory)
// into the observations store, one source per file.
//
// Behavior:
//   - Each file is identified by its base name in the ingestion log.
//   - Already ingested files are skipped unless force is set, in which case
//     their previous rows are replaced.
//   - A file is written in one transaction: its previous rows are deleted,
//     the new ones copied in batches of defaultBatchSize and the log entry
//     upserted. A failed file leaves the store as it was.
//   - If any file returns error, cancels the rest and returns that error.
func IngestPath(ctx context.Context, path string, db *sql.DB, parallel int, force bool) error {
	// use indirection to allow tests to swap repository constructor
	repo := repoCtor(db)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat failed for %s: %w", path, err)
	}
	files := []string{path}
	if info.IsDir() {
		if files, err = csvFiles(path); err != nil {
			return err
		}
	}

	log := logger.Component("ingest")
	maxParallel := clampParallel(parallel)
	log.Info().Int("files", len(files)).Str("path", path).Int("max_parallel", maxParallel).Msg("ingestion start")

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

	for i, file := range files {
		idx := i
		f := file
		sem <- struct{}{}

		g.Go(func() error {
			defer func() { <-sem }()
			start := time.Now()
			base := filepath.Base(f)
			log.Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Msg("file start")

			// Idempotency: skip if already ingested, unless force
			exists, err := repo.HasIngestionForSource(base)
			if err != nil {
				log.Error().Str("file", base).Err(err).Msg("check ingestion log failed")
				return fmt.Errorf("file %s: check ingestion log: %w", f, err)
			}
			if exists && !force {
				log.Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Bool("skipped", true).Msg("already ingested")
				return nil
			}

			obs, err := LoadFile(gctx, f)
			if err != nil {
				log.Error().Str("file", base).Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", f, err)
			}

			total, err := persistObservations(gctx, base, obs, repo, defaultBatchSize)
			if err != nil {
				log.Error().Str("file", base).Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", f, err)
			}
			log.Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Int("rows", total).Dur("elapsed", time.Since(start)).Bool("force", force).Msg("file done")
			return nil
		})
	}

	return g.Wait()
}

// persistObservations replaces the rows of source with obs, copying them in
// batches of at most batch rows, and commits only if every batch succeeded.
func persistObservations(ctx context.Context, source string, obs []models.Observation, repo storage.ObservationsRepository, batch int) (total int, err error) {
	if batch < 1 {
		batch = defaultBatchSize
	}
	w, err := repo.BeginSource(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = w.Rollback()
		}
	}()

	for start := 0; start < len(obs); start += batch {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		end := start + batch
		if end > len(obs) {
			end = len(obs)
		}
		if err := w.InsertBatch(start, obs[start:end]); err != nil {
			return 0, fmt.Errorf("flush batch ending row %d: %w", end, err)
		}
		total += end - start
	}
	if err := w.Commit(total); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}

// csvFiles lists the *.csv files of dir sorted by name.
func csvFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), fileSuffix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files in %s", fileSuffix, dir)
	}
	sort.Strings(files)
	return files, nil
}

// clampParallel defaults to min(maxParallelFiles, NumCPU) and caps explicit
// values at maxParallelFiles.
func clampParallel(parallel int) int {
	if parallel > 0 {
		if parallel > maxParallelFiles {
			return maxParallelFiles
		}
		return parallel
	}
	if c := runtime.NumCPU(); c < maxParallelFiles {
		return c
	}
	return maxParallelFiles
}
