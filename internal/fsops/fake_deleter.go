package fsops

import "os"

// FakeDeleter implements Deleter for testing
// Records every remove call; paths listed in Fail return that error instead.
// When Passthrough is set, successful calls also remove the node for real.
type FakeDeleter struct {
	Calls       []string
	Fail        map[string]error
	Passthrough bool
}

func (f *FakeDeleter) Remove(path string) error {
	f.Calls = append(f.Calls, "rm:"+path)
	if err, ok := f.Fail[path]; ok {
		return err
	}
	if f.Passthrough {
		return os.Remove(path)
	}
	return nil
}
