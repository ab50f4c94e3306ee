package database

import (
	"database/sql"
	"time"
)

const selectColumns = `
	SELECT id, timestamp, action, path, file_name, object_type, size,
	       iterations, fill_type, passes, error_message, created_at
	FROM shred_events
`

// GetRecentEvents returns the N most recent shred events
func (d *ShredDB) GetRecentEvents(limit int) ([]ShredRecord, error) {
	return d.queryEvents(selectColumns+`
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, limit)
}

// GetEventsByDateRange returns events within a time range
func (d *ShredDB) GetEventsByDateRange(start, end time.Time) ([]ShredRecord, error) {
	return d.queryEvents(selectColumns+`
	WHERE timestamp BETWEEN ? AND ?
	ORDER BY timestamp DESC, id DESC
	`, start, end)
}

// GetEventsByAction returns events filtered by action (SHRED, DRY_RUN, ERROR)
func (d *ShredDB) GetEventsByAction(action string) ([]ShredRecord, error) {
	return d.queryEvents(selectColumns+`
	WHERE action = ?
	ORDER BY timestamp DESC, id DESC
	`, action)
}

// GetEventsByPath returns events matching a path pattern (SQL LIKE syntax)
func (d *ShredDB) GetEventsByPath(pathPattern string) ([]ShredRecord, error) {
	return d.queryEvents(selectColumns+`
	WHERE path LIKE ?
	ORDER BY timestamp DESC, id DESC
	`, pathPattern)
}

// GetLargestShreds returns the N largest successfully shredded files
func (d *ShredDB) GetLargestShreds(limit int) ([]ShredRecord, error) {
	return d.queryEvents(selectColumns+`
	WHERE action = 'SHRED' AND object_type = 'file'
	ORDER BY size DESC
	LIMIT ?
	`, limit)
}

// GetTotalBytesOverwritten returns size*passes summed over shredded files in a time range
func (d *ShredDB) GetTotalBytesOverwritten(start, end time.Time) (int64, error) {
	query := `
	SELECT COALESCE(SUM(size * passes), 0)
	FROM shred_events
	WHERE action = 'SHRED' AND object_type = 'file' AND timestamp BETWEEN ? AND ?
	`

	var total int64
	err := d.db.QueryRow(query, start, end).Scan(&total)
	return total, err
}

// GetEventCountByAction returns count of events grouped by action
func (d *ShredDB) GetEventCountByAction(since time.Time) (map[string]int, error) {
	return d.countBy("action", since)
}

// GetEventCountByFillType returns count of shredded files grouped by fill type
func (d *ShredDB) GetEventCountByFillType(since time.Time) (map[string]int, error) {
	query := `
	SELECT fill_type, COUNT(*)
	FROM shred_events
	WHERE action = 'SHRED' AND object_type = 'file' AND timestamp >= ?
	GROUP BY fill_type
	`
	return d.scanCounts(query, since)
}

func (d *ShredDB) countBy(column string, since time.Time) (map[string]int, error) {
	// column is always a package constant, never user input
	query := `SELECT ` + column + `, COUNT(*) FROM shred_events WHERE timestamp >= ? GROUP BY ` + column
	return d.scanCounts(query, since)
}

func (d *ShredDB) scanCounts(query string, args ...interface{}) (map[string]int, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}

	return counts, rows.Err()
}

// ShredStats holds aggregated statistics
type ShredStats struct {
	FilesShredded      int
	DirectoriesRemoved int
	SpecialRemoved     int
	DryRuns            int
	Errors             int
	BytesOverwritten   int64
	ByAction           map[string]int
	ByFillType         map[string]int
	StartDate          time.Time
	EndDate            time.Time
}

// GetShredStats returns statistics for the last N days
func (d *ShredDB) GetShredStats(days int) (*ShredStats, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	stats := &ShredStats{
		StartDate: since,
		EndDate:   now,
	}

	err := d.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN action = 'SHRED' AND object_type = 'file' THEN 1 END),
			COUNT(CASE WHEN action = 'SHRED' AND object_type = 'directory' THEN 1 END),
			COUNT(CASE WHEN action = 'SHRED' AND object_type = 'special' THEN 1 END),
			COUNT(CASE WHEN action = 'DRY_RUN' THEN 1 END),
			COUNT(CASE WHEN action = 'ERROR' THEN 1 END)
		FROM shred_events
		WHERE timestamp >= ?
	`, since).Scan(&stats.FilesShredded, &stats.DirectoriesRemoved, &stats.SpecialRemoved, &stats.DryRuns, &stats.Errors)
	if err != nil {
		return nil, err
	}

	stats.BytesOverwritten, err = d.GetTotalBytesOverwritten(since, now)
	if err != nil {
		return nil, err
	}

	stats.ByAction, err = d.GetEventCountByAction(since)
	if err != nil {
		return nil, err
	}

	stats.ByFillType, err = d.GetEventCountByFillType(since)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// DeleteOldRecords removes records older than specified days
func (d *ShredDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	result, err := d.db.Exec(`DELETE FROM shred_events WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// queryEvents executes a select over selectColumns and scans the rows
func (d *ShredDB) queryEvents(query string, args ...interface{}) ([]ShredRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ShredRecord
	for rows.Next() {
		var r ShredRecord
		var fileName, errMsg sql.NullString
		var iterations, passes int64

		err := rows.Scan(
			&r.ID, &r.Timestamp, &r.Action, &r.Path, &fileName,
			&r.ObjectType, &r.Size, &iterations, &r.FillType, &passes,
			&errMsg, &r.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		r.FileName = fileName.String
		r.ErrorMessage = errMsg.String
		r.Iterations = uint(iterations)
		r.Passes = uint(passes)

		records = append(records, r)
	}

	return records, rows.Err()
}
