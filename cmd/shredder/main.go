package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"file-shredder/internal/config"
	"file-shredder/internal/database"
	"file-shredder/internal/disk"
	"file-shredder/internal/exitcodes"
	"file-shredder/internal/fill"
	"file-shredder/internal/limiter"
	"file-shredder/internal/logging"
	"file-shredder/internal/metrics"
	"file-shredder/internal/safety"
	"file-shredder/internal/shred"
)

const usage = `Usage: shredder [flags] <path> <iterations> <fillType>

Overwrites a file (or every file under a directory) <iterations> times,
then removes it.

  iterations  non-negative integer number of overwrite passes
  fillType    0 = zero bytes, anything else = pseudo-random bytes

Flags:
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("shredder", pflag.ContinueOnError)
	configPath := flags.String("config", config.DefaultPath, "Path to configuration file")
	dbPath := flags.String("db", "", "Record shred history to this SQLite database (overrides config)")
	chunkSize := flags.Int("chunk-size", 0, "Bytes per overwrite write call (overrides config)")
	metricsFile := flags.String("metrics-file", "", "Write Prometheus metrics to this textfile after the run (overrides config)")
	logDir := flags.String("log-dir", "", "Also append logs to <dir>/shredder.log (overrides config)")
	dryRun := flags.Bool("dry-run", false, "Show what would be shredded without touching anything")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitcodes.Success
		}
		return exitcodes.InvalidArgs
	}

	if flags.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "Wrong arguments!")
		flags.Usage()
		return exitcodes.InvalidArgs
	}

	path := flags.Arg(0)
	iterations, err := strconv.ParseUint(flags.Arg(1), 10, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid iterations %q: must be a non-negative integer\n", flags.Arg(1))
		return exitcodes.InvalidArgs
	}
	fillType := fill.ParseType(flags.Arg(2))

	cfg, err := loadConfig(*configPath, flags.Changed("config"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to load config: %v\n", err)
		return exitcodes.InvalidConfig
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *chunkSize != 0 {
		cfg.ChunkSizeBytes = *chunkSize
	}
	if *metricsFile != "" {
		cfg.Metrics.TextfilePath = *metricsFile
	}
	if *logDir != "" {
		cfg.Logging.Dir = *logDir
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Invalid configuration: %v\n", err)
		return exitcodes.InvalidConfig
	}

	logger := logging.NewWithConfig(cfg)
	if *dryRun {
		logger.Println("DRY RUN MODE: Nothing will be overwritten or removed")
	}

	validator := safety.NewValidator(cfg.Safety.AllowedRoots, cfg.Safety.ProtectedPaths)
	if err := validator.ValidateShredTarget(path); err != nil {
		logger.Printf("ERROR: Refusing to shred %s: %v", path, err)
		return exitcodes.SafetyViolation
	}

	metrics.Init()

	var db *database.ShredDB
	if cfg.DatabasePath != "" {
		db, err = database.NewShredDB(cfg.DatabasePath)
		if err != nil {
			logger.Printf("ERROR: Failed to open database: %v", err)
			return exitcodes.RuntimeError
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: Failed to close database: %v", err)
			}
		}()
	}

	if stats, err := disk.ScanTree(path); err == nil {
		logger.Printf("Target %s: %d files (%d bytes), %d directories, %d special entries",
			path, stats.Files, stats.Bytes, stats.Directories, stats.Special)
	}

	shredder := shred.NewShredder(shred.NewConfig(uint(iterations), fillType), logger, *dryRun, db)
	shredder.SetChunkSize(cfg.ChunkSizeBytes)
	if cfg.ResourceLimits.MaxCPUPercent > 0 {
		shredder.SetLimiter(limiter.NewCPULimiter(cfg.ResourceLimits.MaxCPUPercent))
	}

	shredErr := shredder.Shred(path)

	if cfg.Metrics.TextfilePath != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Printf("ERROR: Failed to write metrics: %v", err)
		}
	}

	if shredErr != nil {
		var notFound *shred.NotFoundError
		if errors.As(shredErr, &notFound) {
			fmt.Fprintf(os.Stderr, "File or directory with path %s not found\n", notFound.Path)
			return exitcodes.NotFound
		}
		if shred.IsAccessDenied(shredErr) {
			logger.Printf("ERROR: Access denied: %v", shredErr)
		} else {
			logger.Printf("ERROR: Shred failed: %v", shredErr)
		}
		return exitcodes.RuntimeError
	}

	return exitcodes.Success
}

// loadConfig reads the config file. A missing file at the default location
// yields defaults; a missing file named explicitly is an error.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return nil, err
}
