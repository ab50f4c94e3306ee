package shred

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"file-shredder/internal/database"
	"file-shredder/internal/fill"
	"file-shredder/internal/fsops"
	"file-shredder/internal/limiter"
	"file-shredder/internal/logging"
	"file-shredder/internal/metrics"
)

// Object types recorded to the history database
const (
	objectFile      = "file"
	objectDirectory = "directory"
	objectSpecial   = "special"
)

// Config is the immutable overwrite policy for one Shredder
type Config struct {
	Iterations uint      // Overwrite passes per file; 0 removes without overwriting
	FillType   fill.Type // Byte pattern written on every pass
}

// NewConfig builds a Config from validated CLI input
func NewConfig(iterations uint, fillType fill.Type) Config {
	return Config{
		Iterations: iterations,
		FillType:   fillType,
	}
}

// Logger interface for structured logging in the shredder
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Stats counts what a Shredder has destroyed so far
type Stats struct {
	Files            int64 // Regular files overwritten and removed
	Directories      int64 // Directories removed
	Special          int64 // Symlinks and special entries unlinked without overwrite
	BytesOverwritten int64 // Bytes written across all passes
	Passes           int64 // Completed overwrite passes across all files
	Writes           int64 // Write calls issued by the fill strategy
}

// file is the open handle the overwrite passes work through
type file interface {
	io.WriteSeeker
	io.Closer
	Stat() (fs.FileInfo, error)
	Sync() error
}

func openReadWrite(path string) (file, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// sub returns the counts accumulated since prev was taken
func (st Stats) sub(prev Stats) Stats {
	return Stats{
		Files:            st.Files - prev.Files,
		Directories:      st.Directories - prev.Directories,
		Special:          st.Special - prev.Special,
		BytesOverwritten: st.BytesOverwritten - prev.BytesOverwritten,
		Passes:           st.Passes - prev.Passes,
		Writes:           st.Writes - prev.Writes,
	}
}

// Shredder overwrites and removes files and directory trees
type Shredder struct {
	cfg      Config
	filler   *fill.Filler
	rng      *rand.Rand
	openFile func(path string) (file, error)
	deleter  fsops.Deleter
	logger   Logger
	limiter  *limiter.CPULimiter
	db       *database.ShredDB // Optional shred history
	dryRun   bool
	stats    Stats
}

// NewShredder creates a Shredder. logger and db may be nil.
func NewShredder(cfg Config, logger *log.Logger, dryRun bool, db *database.ShredDB) *Shredder {
	metrics.Init()
	return &Shredder{
		cfg:      cfg,
		filler:   fill.New(cfg.FillType, fill.DefaultChunkSize, nil),
		openFile: openReadWrite,
		deleter:  fsops.OSDeleter{},
		logger:   logging.NewLeveled(logger),
		db:       db,
		dryRun:   dryRun,
	}
}

// SetDeleter replaces the node removal implementation
func (s *Shredder) SetDeleter(d fsops.Deleter) {
	s.deleter = d
}

// SetLimiter throttles CPU after every file
func (s *Shredder) SetLimiter(l *limiter.CPULimiter) {
	s.limiter = l
}

// SetChunkSize sets the overwrite write size in bytes
func (s *Shredder) SetChunkSize(n int) {
	s.filler = fill.New(s.cfg.FillType, n, s.rng)
}

// SetRand seeds Random fill from r
func (s *Shredder) SetRand(r *rand.Rand) {
	s.rng = r
	s.filler = fill.New(s.cfg.FillType, s.filler.ChunkSize(), r)
}

// Config returns the overwrite policy
func (s *Shredder) Config() Config {
	return s.cfg
}

// Stats returns counters accumulated across Shred calls
func (s *Shredder) Stats() Stats {
	return s.stats
}

// Shred overwrites and removes path, recursing if it is a directory.
// A path that is neither a directory nor a regular file yields *NotFoundError.
func (s *Shredder) Shred(path string) error {
	start := time.Now()
	before := s.stats
	defer func() {
		metrics.RecordRun(time.Since(start))
	}()

	s.logger.Info("Starting shred",
		"path", path,
		"iterations", s.cfg.Iterations,
		"fill_type", s.cfg.FillType,
		"chunk_size", s.filler.ChunkSize(),
		"dry_run", s.dryRun,
	)

	err := s.dispatch(path)
	if err != nil {
		metrics.RecordError(opName(err))
		s.logger.Error("Shred failed", "path", path, "error", err)
		return err
	}

	run := s.stats.sub(before)
	s.logger.Info("Shred complete",
		"path", path,
		"files", run.Files,
		"directories", run.Directories,
		"special", run.Special,
		"bytes_overwritten", run.BytesOverwritten,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func (s *Shredder) dispatch(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Path: path}
		}
		return newOpError("stat", path, err)
	}

	switch {
	case info.IsDir():
		return s.shredDirectory(path)
	case info.Mode().IsRegular():
		return s.shredFile(path)
	default:
		return &NotFoundError{Path: path}
	}
}

// shredDirectory shreds child files, recurses into child directories, then
// removes the emptied directory. The first failure aborts the walk.
func (s *Shredder) shredDirectory(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		err = newOpError("readdir", path, err)
		s.record(database.ActionError, path, objectDirectory, 0, 0, err)
		return err
	}

	var subdirs []string
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		switch {
		case entry.IsDir():
			subdirs = append(subdirs, child)
		case entry.Type().IsRegular():
			if err := s.shredFile(child); err != nil {
				return err
			}
		default:
			if err := s.removeSpecial(child); err != nil {
				return err
			}
		}
	}

	for _, dir := range subdirs {
		if err := s.shredDirectory(dir); err != nil {
			return err
		}
	}

	if s.dryRun {
		s.logger.Info("[DRY RUN] Would remove directory", "path", path)
		s.record(database.ActionDryRun, path, objectDirectory, 0, 0, nil)
		return nil
	}

	if err := s.deleter.Remove(path); err != nil {
		err = newOpError("remove", path, err)
		s.record(database.ActionError, path, objectDirectory, 0, 0, err)
		return err
	}

	s.stats.Directories++
	metrics.DirectoriesRemovedTotal.Inc()
	s.logger.Info("Removed directory", "path", path)
	s.record(database.ActionShred, path, objectDirectory, 0, 0, nil)
	return nil
}

// shredFile overwrites path Iterations times, closes it, then removes it.
// The file is only removed once every pass has reached stable storage.
func (s *Shredder) shredFile(path string) error {
	if s.dryRun {
		return s.dryRunFile(path)
	}

	f, err := s.openFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Path: path}
		}
		err = newOpError("open", path, err)
		s.record(database.ActionError, path, objectFile, 0, 0, err)
		return err
	}

	size, passes, err := s.overwrite(f, path)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = newOpError("close", path, closeErr)
	}
	if err != nil {
		s.record(database.ActionError, path, objectFile, size, passes, err)
		return err
	}

	if err := s.deleter.Remove(path); err != nil {
		err = newOpError("remove", path, err)
		s.record(database.ActionError, path, objectFile, size, passes, err)
		return err
	}

	s.stats.Files++
	metrics.RecordFileShredded(size, passes, s.cfg.FillType.String())
	s.logger.Info("Shredded file", "path", path, "size", size, "passes", passes)
	s.record(database.ActionShred, path, objectFile, size, passes, nil)

	if s.limiter != nil {
		s.limiter.Throttle()
	}
	return nil
}

// overwrite runs the overwrite passes over the length f had when opened
func (s *Shredder) overwrite(f file, path string) (size int64, passes uint, err error) {
	info, err := f.Stat()
	if err != nil {
		return 0, 0, newOpError("stat", path, err)
	}
	size = info.Size()

	for passes = 0; passes < s.cfg.Iterations; passes++ {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return size, passes, newOpError("seek", path, err)
		}

		writes, err := s.filler.Fill(f, size)
		s.stats.Writes += int64(writes)
		if err != nil {
			return size, passes, newOpError("write", path, err)
		}

		if err := f.Sync(); err != nil {
			return size, passes, newOpError("sync", path, err)
		}

		s.stats.Passes++
		s.stats.BytesOverwritten += size
	}

	return size, passes, nil
}

// removeSpecial unlinks a symlink, device, socket or pipe without opening it,
// so a link target is never overwritten
func (s *Shredder) removeSpecial(path string) error {
	if s.dryRun {
		s.logger.Info("[DRY RUN] Would unlink special entry", "path", path)
		s.record(database.ActionDryRun, path, objectSpecial, 0, 0, nil)
		return nil
	}

	if err := s.deleter.Remove(path); err != nil {
		err = newOpError("remove", path, err)
		s.record(database.ActionError, path, objectSpecial, 0, 0, err)
		return err
	}

	s.stats.Special++
	metrics.SpecialNodesRemovedTotal.Inc()
	s.logger.Info("Unlinked special entry", "path", path)
	s.record(database.ActionShred, path, objectSpecial, 0, 0, nil)
	return nil
}

func (s *Shredder) dryRunFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Path: path}
		}
		return newOpError("stat", path, err)
	}

	s.logger.Info("[DRY RUN] Would shred file", "path", path, "size", info.Size(), "passes", s.cfg.Iterations)
	s.record(database.ActionDryRun, path, objectFile, info.Size(), 0, nil)
	return nil
}

// record writes a history row; database failures never fail the shred
func (s *Shredder) record(action, path, objectType string, size int64, passes uint, cause error) {
	if s.db == nil {
		return
	}

	rec := database.ShredRecord{
		Timestamp:  time.Now(),
		Action:     action,
		Path:       path,
		ObjectType: objectType,
		Size:       size,
		Iterations: s.cfg.Iterations,
		FillType:   s.cfg.FillType.String(),
		Passes:     passes,
	}
	if cause != nil {
		rec.ErrorMessage = cause.Error()
	}

	if err := s.db.RecordEvent(rec); err != nil {
		s.logger.Warn("Failed to record shred event", "path", path, "error", err)
	}
}
