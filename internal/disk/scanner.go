package disk

import (
	"io/fs"
	"os"
	"path/filepath"
)

// TreeStats summarizes what a shred of a path will touch
type TreeStats struct {
	Files       int64 // Regular files that will be overwritten
	Directories int64 // Directories that will be removed, including the root
	Special     int64 // Symlinks, devices and other entries that will only be unlinked
	Bytes       int64 // Total size of regular files
}

// Nodes returns the number of filesystem nodes the shred will remove
func (s *TreeStats) Nodes() int64 {
	return s.Files + s.Directories + s.Special
}

// ScanTree walks path and computes TreeStats. Symlinks are counted, not followed.
func ScanTree(path string) (*TreeStats, error) {
	stats := &TreeStats{}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if info.Mode().IsRegular() {
			stats.Files = 1
			stats.Bytes = info.Size()
		} else {
			stats.Special = 1
		}
		return stats, nil
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			stats.Directories++
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			stats.Files++
			stats.Bytes += info.Size()
		default:
			stats.Special++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}
