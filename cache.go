package beartype

import "sync"

// The validator cache maps (schema fingerprint, configuration identity) to
// compiled artifacts for the life of the process. Entries are never
// evicted; growth is bounded in practice by the number of distinct schemas
// the host application compiles. Concurrent lookups for the same key are
// safe: compute runs outside the lock, and if two requests race the first
// stored artifact wins. The loser's duplicate compile is wasted work, not
// a correctness issue.

type cacheKey struct {
	fingerprint string
	conf        *Config
}

type validatorCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*Validator

	hits     int64
	misses   int64
	computes int64
}

func newValidatorCache() *validatorCache {
	return &validatorCache{entries: make(map[cacheKey]*Validator, 64)}
}

var defaultCache = newValidatorCache()

func (vc *validatorCache) getOrCompile(schema Node, conf *Config, compute func() (*Validator, error)) (*Validator, error) {
	key := cacheKey{
		fingerprint: defaultFingerprinter.fingerprintNode(schema),
		conf:        conf,
	}

	vc.mu.RLock()
	vd, ok := vc.entries[key]
	vc.mu.RUnlock()
	if ok {
		vc.mu.Lock()
		vc.hits++
		vc.mu.Unlock()
		return vd, nil
	}

	built, err := compute()

	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.misses++
	vc.computes++
	if err != nil {
		return nil, err
	}
	if winner, ok := vc.entries[key]; ok {
		// Lost a benign race; keep the stored artifact.
		return winner, nil
	}
	vc.entries[key] = built
	return built, nil
}

func (vc *validatorCache) stats() (hits, misses int64) {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.hits, vc.misses
}

func (vc *validatorCache) reset() {
	vc.mu.Lock()
	vc.entries = make(map[cacheKey]*Validator, 64)
	vc.hits = 0
	vc.misses = 0
	vc.computes = 0
	vc.mu.Unlock()
}

// CacheStats reports lookup hits and misses of the process-wide validator
// cache. Intended for test harnesses asserting that recompiling a known
// schema performs no new compiler work.
func CacheStats() (hits, misses int64) {
	return defaultCache.stats()
}

// ResetCaches clears every process-wide cache: compiled validators, the
// per-(node, configuration) union flattening memo, and schema
// fingerprints. Test-only; production callers rely on entries living for
// the process lifetime.
func ResetCaches() {
	defaultCache.reset()
	flattenCache.reset()
	defaultFingerprinter.reset()
}
