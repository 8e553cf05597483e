package deepclone

import (
	"reflect"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// planCache memoizes compiled plans per type across two tiers.
// The full tier is unbounded; the limited tier evicts once over its
// configured capacity. Exactly one tier serves automatic lookups at a
// time: the limited tier whenever its capacity is greater than zero.
// Both tiers remain clearable and inspectable regardless of which is
// active. Tier structures tolerate concurrent resolution; a duplicate
// compile on a simultaneous miss wastes work but corrupts nothing.
type planCache struct {
	full    sync.Map // reflect.Type → *Plan
	limited limitedTier
}

// limitedTier wraps the bounded store. The mutex guards only the
// configuration (backing store creation, capacity); entry access goes
// through the store's own synchronization.
type limitedTier struct {
	mu       sync.RWMutex
	store    *lru.Cache[reflect.Type, *Plan]
	capacity int
}

// defaultLimitedCapacity sizes the limited tier's backing store when a
// plan is force-inserted before any capacity was configured.
const defaultLimitedCapacity = 64

// plans is the process-wide cache behind [Clone] and the
// administrative functions.
var plans planCache

func (tier *limitedTier) active() bool {
	tier.mu.RLock()
	defer tier.mu.RUnlock()
	return tier.capacity > 0
}

func (tier *limitedTier) configuredCapacity() int {
	tier.mu.RLock()
	defer tier.mu.RUnlock()
	return tier.capacity
}

// setCapacity activates the tier (capacity > 0) or deactivates it
// (capacity <= 0). Shrinking evicts immediately; deactivation retains
// entries so the tier can still be inspected and cleared.
func (tier *limitedTier) setCapacity(capacity int) {
	tier.mu.Lock()
	defer tier.mu.Unlock()
	if capacity <= 0 {
		tier.capacity = 0
		return
	}
	tier.capacity = capacity
	if tier.store == nil {
		tier.store = newLimitedStore(capacity)
		return
	}
	tier.store.Resize(capacity)
}

func newLimitedStore(capacity int) *lru.Cache[reflect.Type, *Plan] {
	store, err := lru.New[reflect.Type, *Plan](capacity)
	if err != nil {
		panic(err) // unreachable: capacity is validated by callers
	}
	return store
}

func (tier *limitedTier) get(t reflect.Type) (*Plan, bool) {
	tier.mu.RLock()
	store := tier.store
	tier.mu.RUnlock()
	if store == nil {
		return nil, false
	}
	return store.Get(t)
}

func (tier *limitedTier) add(p *Plan) {
	tier.mu.Lock()
	if tier.store == nil {
		tier.store = newLimitedStore(defaultLimitedCapacity)
	}
	store := tier.store
	tier.mu.Unlock()
	store.Add(p.typ, p)
}

func (tier *limitedTier) clear() {
	tier.mu.RLock()
	store := tier.store
	tier.mu.RUnlock()
	if store != nil {
		store.Purge()
	}
}

func (tier *limitedTier) contents() map[reflect.Type]*Plan {
	tier.mu.RLock()
	store := tier.store
	tier.mu.RUnlock()
	snapshot := make(map[reflect.Type]*Plan)
	if store == nil {
		return snapshot
	}
	for _, typ := range store.Keys() {
		if plan, ok := store.Peek(typ); ok {
			snapshot[typ] = plan
		}
	}
	return snapshot
}

// lookupActive consults whichever tier currently serves automatic lookups.
func (pc *planCache) lookupActive(t reflect.Type) (*Plan, bool) {
	if pc.limited.active() {
		return pc.limited.get(t)
	}
	if cached, ok := pc.full.Load(t); ok {
		return cached.(*Plan), true
	}
	return nil, false
}

func (pc *planCache) insertActive(p *Plan) {
	if pc.limited.active() {
		pc.limited.add(p)
		return
	}
	pc.full.Store(p.typ, p)
}

// resolve returns the active tier's plan for t, compiling on a miss.
// Every compound type visited during compilation is inserted, but only
// after the whole compilation completes: a plan must never be
// reachable from the cache before its nested plans are executable.
func (pc *planCache) resolve(t reflect.Type) (*Plan, error) {
	if cached, ok := pc.lookupActive(t); ok {
		return cached, nil
	}
	c := newCompiler(pc.lookupActive)
	plan, err := c.plan(t)
	if err != nil {
		return nil, err
	}
	for _, compiled := range c.compiled {
		if debugging {
			assert(compiled.exec != nil, "incomplete plan inserted into cache")
		}
		pc.insertActive(compiled)
	}
	return plan, nil
}

// ClearFullCache discards every plan in the unbounded tier.
func ClearFullCache() {
	plans.full.Range(func(key, _ any) bool {
		plans.full.Delete(key)
		return true
	})
}

// ClearLimitedCache discards every plan in the capacity-bounded tier.
func ClearLimitedCache() { plans.limited.clear() }

// ClearCaches discards every plan in both tiers.
func ClearCaches() {
	ClearFullCache()
	ClearLimitedCache()
}

// SetLimitedCacheCapacity configures the capacity-bounded tier and
// selects the tier serving automatic lookups: the limited tier when
// capacity is greater than zero, the full tier otherwise.
// Already-cached entries are unaffected beyond any eviction a shrink
// forces. Strict consistency against concurrently running [Clone]
// calls must be arranged by the caller.
func SetLimitedCacheCapacity(capacity int) { plans.limited.setCapacity(capacity) }

// LimitedCacheCapacity returns the configured capacity of the
// capacity-bounded tier; zero when the full tier is active.
func LimitedCacheCapacity() int { return plans.limited.configuredCapacity() }

// LimitedCacheActive reports whether the capacity-bounded tier is
// serving automatic lookups.
func LimitedCacheActive() bool { return plans.limited.active() }

// FullCacheContents returns a snapshot of the unbounded tier.
func FullCacheContents() map[reflect.Type]*Plan {
	snapshot := make(map[reflect.Type]*Plan)
	plans.full.Range(func(key, value any) bool {
		snapshot[key.(reflect.Type)] = value.(*Plan)
		return true
	})
	return snapshot
}

// LimitedCacheContents returns a snapshot of the capacity-bounded tier.
func LimitedCacheContents() map[reflect.Type]*Plan {
	return plans.limited.contents()
}

// StoreFullPlan inserts p into the unbounded tier,
// regardless of which tier is active.
func StoreFullPlan(p *Plan) { plans.full.Store(p.typ, p) }

// StoreLimitedPlan inserts p into the capacity-bounded tier,
// regardless of which tier is active.
func StoreLimitedPlan(p *Plan) { plans.limited.add(p) }
