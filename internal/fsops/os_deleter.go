package fsops

import "os"

// OSDeleter implements Deleter using os.Remove.
// Directories must already be empty.
type OSDeleter struct{}

func (OSDeleter) Remove(path string) error {
	return os.Remove(path)
}
