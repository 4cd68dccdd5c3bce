package cryptox

import "sync"

var (
	pepperMu sync.RWMutex
	pepper   string
)

// SetPepper installs a process-wide secret mixed into every password before
// hashing. An empty value disables peppering. Set it once during startup,
// before any password is hashed or verified; changing it afterwards
// invalidates every stored hash.
func SetPepper(p string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepper = p
}

func getPepper() string {
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	return pepper
}
