package analysis

import (
	"testing"
	"time"
)

func TestModelCacheHitAndMiss(t *testing.T) {
	cache := NewModelCache(time.Minute, 8)
	key := ModelKey{PlayerID: 1630178, Stat: "PTS"}

	if got := cache.Get(key); got != nil {
		t.Fatalf("expected miss on empty cache")
	}

	features, targets := linearTrainingSet(25)
	forest, err := TrainForest(features, targets, DefaultForestConfig())
	if err != nil {
		t.Fatalf("TrainForest failed: %v", err)
	}

	cache.Set(key, forest)
	if got := cache.Get(key); got != forest {
		t.Fatalf("expected cached model back")
	}
	if cache.ItemCount() != 1 {
		t.Fatalf("item count = %d, want 1", cache.ItemCount())
	}

	hits, misses, ratio := cache.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("stats = %d hits / %d misses, want 1/1", hits, misses)
	}
	if ratio != 0.5 {
		t.Fatalf("hit ratio = %v, want 0.5", ratio)
	}
}

func TestModelCacheKeysByStat(t *testing.T) {
	cache := NewModelCache(0, 8)
	features, targets := linearTrainingSet(25)
	forest, err := TrainForest(features, targets, DefaultForestConfig())
	if err != nil {
		t.Fatalf("TrainForest failed: %v", err)
	}

	cache.Set(ModelKey{PlayerID: 1630178, Stat: "PTS"}, forest)
	if got := cache.Get(ModelKey{PlayerID: 1630178, Stat: "REB"}); got != nil {
		t.Fatalf("a points model must not serve rebounds")
	}
}

func TestModelCacheReset(t *testing.T) {
	cache := NewModelCache(0, 8)
	features, targets := linearTrainingSet(25)
	forest, err := TrainForest(features, targets, DefaultForestConfig())
	if err != nil {
		t.Fatalf("TrainForest failed: %v", err)
	}
	key := ModelKey{PlayerID: 1, Stat: "PTS"}
	cache.Set(key, forest)
	cache.Get(key)

	cache.Reset()
	if cache.ItemCount() != 0 {
		t.Fatalf("reset should empty the cache")
	}
	hits, misses, _ := cache.Stats()
	if hits != 0 || misses != 0 {
		t.Fatalf("reset should clear counters, got %d/%d", hits, misses)
	}
}
