//go:build !unix

package trackingstore

import (
	"os"
	"sync"
)

// Non-unix platforms fall back to an in-process mutex keyed by path; this
// loses cross-process serialization but keeps the store usable for local
// development off Linux/BSD/macOS.
var fallbackMu sync.Map // map[string]*sync.RWMutex

func mutexFor(name string) *sync.RWMutex {
	v, _ := fallbackMu.LoadOrStore(name, &sync.RWMutex{})
	return v.(*sync.RWMutex)
}

func sharedLock(f *os.File) (func(), error) {
	mu := mutexFor(f.Name())
	mu.RLock()
	return mu.RUnlock, nil
}

func exclusiveLock(f *os.File) (func(), error) {
	mu := mutexFor(f.Name())
	mu.Lock()
	return mu.Unlock, nil
}
