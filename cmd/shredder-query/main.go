package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"file-shredder/internal/database"
	"file-shredder/internal/exitcodes"
)

const defaultDBPath = "/var/lib/shredder/history.db"

func main() {
	dbPath := pflag.String("db", defaultDBPath, "Path to shred history database")
	recent := pflag.Int("recent", 0, "Show N most recent events")
	stats := pflag.Bool("stats", false, "Show shred statistics")
	days := pflag.Int("days", 30, "Number of days for statistics")
	action := pflag.String("action", "", "Filter by action (SHRED, DRY_RUN, ERROR)")
	pathPattern := pflag.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	largest := pflag.Int("largest", 0, "Show N largest shredded files")
	pruneDays := pflag.Int("prune-days", 0, "Delete records older than N days and vacuum")
	jsonOutput := pflag.Bool("json", false, "Output in JSON format")
	pflag.Parse()

	db, err := database.NewShredDB(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	out := os.Stdout
	switch {
	case *pruneDays > 0:
		err = prune(out, db, *pruneDays)
	case *stats:
		err = showStats(out, db, *days, *jsonOutput)
	case *recent > 0:
		err = showRecords(out, *jsonOutput)(db.GetRecentEvents(*recent))
	case *action != "":
		err = showRecords(out, *jsonOutput)(db.GetEventsByAction(*action))
	case *pathPattern != "":
		err = showRecords(out, *jsonOutput)(db.GetEventsByPath(*pathPattern))
	case *largest > 0:
		err = showRecords(out, *jsonOutput)(db.GetLargestShreds(*largest))
	default:
		pflag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  shredder-query --recent 10             # Show 10 most recent events")
		fmt.Println("  shredder-query --stats --days 7        # Show statistics for the last week")
		fmt.Println("  shredder-query --action ERROR          # Show only failures")
		fmt.Println("  shredder-query --path '/home/%'        # Show events under /home")
		fmt.Println("  shredder-query --largest 10            # Show 10 largest shredded files")
		fmt.Println("  shredder-query --prune-days 90         # Drop history older than 90 days")
		db.Close()
		os.Exit(exitcodes.InvalidArgs)
	}

	if err != nil {
		log.Printf("ERROR: Query failed: %v", err)
		db.Close()
		os.Exit(exitcodes.RuntimeError)
	}
}

func prune(w io.Writer, db *database.ShredDB, days int) error {
	n, err := db.DeleteOldRecords(days)
	if err != nil {
		return err
	}
	if err := db.Vacuum(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Deleted %d records older than %d days\n", n, days)
	return nil
}

func showStats(w io.Writer, db *database.ShredDB, days int, jsonOutput bool) error {
	stats, err := db.GetShredStats(days)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(w, "Shred Statistics (Last %d days)\n", days)
	fmt.Fprintf(w, "Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Files Shredded:       %d\n", stats.FilesShredded)
	fmt.Fprintf(w, "Directories Removed:  %d\n", stats.DirectoriesRemoved)
	fmt.Fprintf(w, "Special Unlinked:     %d\n", stats.SpecialRemoved)
	fmt.Fprintf(w, "Dry-Run Entries:      %d\n", stats.DryRuns)
	fmt.Fprintf(w, "Errors:               %d\n", stats.Errors)
	fmt.Fprintf(w, "Bytes Overwritten:    %s\n", formatBytes(stats.BytesOverwritten))

	if len(stats.ByFillType) > 0 {
		fmt.Fprintln(w, "\nBy Fill Type:")
		for fillType, count := range stats.ByFillType {
			fmt.Fprintf(w, "  %-10s %d\n", fillType, count)
		}
	}
	return nil
}

// showRecords returns a printer for the (records, err) pair of a query
func showRecords(w io.Writer, jsonOutput bool) func([]database.ShredRecord, error) error {
	return func(records []database.ShredRecord, err error) error {
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		printTable(w, records)
		return nil
	}
}

func printTable(w io.Writer, records []database.ShredRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tACTION\tTYPE\tSIZE\tPASSES\tFILL\tPATH\tERROR")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%s\t%s\t%s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Action,
			r.ObjectType,
			formatBytes(r.Size),
			r.Passes, r.Iterations,
			r.FillType,
			r.Path,
			r.ErrorMessage,
		)
	}
	tw.Flush()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
