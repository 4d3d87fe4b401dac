package detect

import (
	"os"
	"os/exec"
	"sync"
)

// pathCache memoizes binary lookups for one process. The cache is
// invalidated whenever PATH changes.
type pathCache struct {
	mu          sync.RWMutex
	cache       map[string]string
	lastPathEnv string
}

var globalCache = &pathCache{
	cache: make(map[string]string),
}

// Which finds a binary in PATH and returns its full path, or an empty
// string when the binary is not found.
func Which(binary string) string {
	if binary == "" {
		return ""
	}

	if path, ok := tryReadCache(binary); ok {
		return path
	}

	return lookupAndCacheBinary(binary)
}

func tryReadCache(binary string) (string, bool) {
	globalCache.mu.RLock()
	defer globalCache.mu.RUnlock()

	if globalCache.lastPathEnv != os.Getenv("PATH") {
		return "", false
	}
	path, ok := globalCache.cache[binary]
	return path, ok
}

func lookupAndCacheBinary(binary string) string {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()

	currentPath := os.Getenv("PATH")
	if globalCache.lastPathEnv != currentPath {
		globalCache.cache = make(map[string]string)
		globalCache.lastPathEnv = currentPath
	}

	if path, ok := globalCache.cache[binary]; ok {
		return path
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		globalCache.cache[binary] = ""
		return ""
	}
	globalCache.cache[binary] = path
	return path
}

// ClearCache invalidates the binary lookup cache.
func ClearCache() {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()

	globalCache.cache = make(map[string]string)
	globalCache.lastPathEnv = ""
}
