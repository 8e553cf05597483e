package deepclone_test

import (
	"reflect"
	"sync"
	"testing"

	deepclone "github.com/djdv/go-deepclone"
)

func TestPlanCache(t *testing.T) {
	t.Run("full tier", fullTier)
	t.Run("cache opt-out", cacheOptOut)
	t.Run("limited tier", limitedTier)
	t.Run("limited eviction", limitedEviction)
	t.Run("pre-warm", preWarm)
	t.Run("clear tiers", clearTiers)
	t.Run("concurrent resolve", concurrentResolve)
}

// resetCaches restores the process-wide tiers around a test.
// Cache tests mutate shared state and must not run in parallel.
func resetCaches(t *testing.T) {
	t.Helper()
	restore := func() {
		deepclone.SetLimitedCacheCapacity(0)
		deepclone.ClearCaches()
	}
	restore()
	t.Cleanup(restore)
}

func fullTier(t *testing.T) {
	resetCaches(t)
	type subject struct{ P *int }
	value := 1
	mustClone(t, subject{P: &value})
	typ := reflect.TypeOf(subject{})
	if _, ok := deepclone.FullCacheContents()[typ]; !ok {
		t.Errorf("full tier holds no plan for %s", typ)
	}
	if deepclone.LimitedCacheActive() {
		t.Error("limited tier reported active with zero capacity")
	}
}

func cacheOptOut(t *testing.T) {
	resetCaches(t)
	type subject struct{ P *int }
	value := 1
	mustClone(t, subject{P: &value}, deepclone.WithoutCache())
	if contents := deepclone.FullCacheContents(); len(contents) != 0 {
		t.Errorf("opt-out populated the full tier: %v", contents)
	}
	if contents := deepclone.LimitedCacheContents(); len(contents) != 0 {
		t.Errorf("opt-out populated the limited tier: %v", contents)
	}
}

func limitedTier(t *testing.T) {
	resetCaches(t)
	const capacity = 8
	deepclone.SetLimitedCacheCapacity(capacity)
	if !deepclone.LimitedCacheActive() {
		t.Fatal("limited tier reported inactive with nonzero capacity")
	}
	if got := deepclone.LimitedCacheCapacity(); got != capacity {
		t.Errorf("got capacity %d, want %d", got, capacity)
	}
	type subject struct{ P *int }
	value := 1
	mustClone(t, subject{P: &value})
	typ := reflect.TypeOf(subject{})
	if _, ok := deepclone.LimitedCacheContents()[typ]; !ok {
		t.Errorf("limited tier holds no plan for %s", typ)
	}
	if _, ok := deepclone.FullCacheContents()[typ]; ok {
		t.Error("plan leaked into the inactive full tier")
	}
}

func limitedEviction(t *testing.T) {
	resetCaches(t)
	const (
		capacity      = 2
		distinctTypes = 8
	)
	deepclone.SetLimitedCacheCapacity(capacity)
	// Array types of distinct lengths are distinct types; a pointer
	// element keeps them out of the value-copy fast path.
	for length := 1; length <= distinctTypes; length++ {
		typ := reflect.ArrayOf(length, reflect.TypeOf((*int)(nil)))
		mustClone(t, reflect.New(typ).Elem().Interface())
	}
	if got := len(deepclone.LimitedCacheContents()); got > capacity {
		t.Errorf("limited tier holds %d plans, capacity is %d", got, capacity)
	}
}

func preWarm(t *testing.T) {
	resetCaches(t)
	typ := reflect.TypeOf((*node)(nil))
	plan, err := deepclone.CompilePlan(typ)
	if err != nil {
		t.Fatalf("CompilePlan returned an error: %v", err)
	}
	if plan.Type() != typ {
		t.Fatalf("plan is for %s, want %s", plan.Type(), typ)
	}
	t.Run("full tier insert", func(t *testing.T) {
		deepclone.StoreFullPlan(plan)
		mustClone(t, &node{Number: 1, Child: &node{Number: 2}})
		if got := deepclone.FullCacheContents()[typ]; got != plan {
			t.Error("resolution replaced the pre-warmed plan")
		}
	})
	t.Run("limited tier insert", func(t *testing.T) {
		deepclone.StoreLimitedPlan(plan)
		if got := deepclone.LimitedCacheContents()[typ]; got != plan {
			t.Error("limited tier does not hold the inserted plan")
		}
		if deepclone.LimitedCacheActive() {
			t.Error("force-insertion must not activate the limited tier")
		}
	})
}

func clearTiers(t *testing.T) {
	resetCaches(t)
	plan, err := deepclone.CompilePlan(reflect.TypeOf((*node)(nil)))
	if err != nil {
		t.Fatalf("CompilePlan returned an error: %v", err)
	}
	deepclone.StoreFullPlan(plan)
	deepclone.StoreLimitedPlan(plan)
	deepclone.ClearFullCache()
	if contents := deepclone.FullCacheContents(); len(contents) != 0 {
		t.Errorf("full tier not empty after clear: %v", contents)
	}
	if contents := deepclone.LimitedCacheContents(); len(contents) == 0 {
		t.Error("clearing the full tier drained the limited tier")
	}
	deepclone.ClearLimitedCache()
	if contents := deepclone.LimitedCacheContents(); len(contents) != 0 {
		t.Errorf("limited tier not empty after clear: %v", contents)
	}
}

func concurrentResolve(t *testing.T) {
	resetCaches(t)
	type subject struct {
		Children []*subject
		Name     string
	}
	const (
		goroutines = 8
		iterations = 100
	)
	source := &subject{
		Name:     "root",
		Children: []*subject{{Name: "left"}, {Name: "right"}},
	}
	var group sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		group.Add(1)
		go func() {
			defer group.Done()
			for i := 0; i < iterations; i++ {
				cloned, err := deepclone.Clone(source)
				if err != nil {
					t.Errorf("concurrent Clone returned an error: %v", err)
					return
				}
				if cloned == source || cloned.Children[0] == source.Children[0] {
					t.Error("concurrent clone shared nodes with the source")
					return
				}
			}
		}()
	}
	group.Wait()
	typ := reflect.TypeOf(source)
	if _, ok := deepclone.FullCacheContents()[typ]; !ok {
		t.Errorf("full tier holds no plan for %s after concurrent resolution", typ)
	}
}
