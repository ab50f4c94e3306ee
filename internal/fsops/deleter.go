package fsops

// Deleter abstracts removal of a single filesystem node
// Enables tests to prove which nodes were (or were not) removed
type Deleter interface {
	Remove(path string) error
}
