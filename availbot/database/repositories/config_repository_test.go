package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/Re4LH/discord-bot/availbot/database/models"
	lru "github.com/hashicorp/golang-lru"
)

func newCachedConfigRepo(t *testing.T, cfg *models.GuildConfig) *configRepository {
	t.Helper()
	cache, err := lru.New(configCacheSize)
	if err != nil {
		t.Fatalf("lru.New() error = %v", err)
	}
	cache.Add(cfg.GuildID, cfg)
	return &configRepository{cache: cache}
}

func TestConfigRepository_GetReturnsOwnCopy(t *testing.T) {
	ctx := context.Background()
	seed := models.NewGuildConfig("100")
	seed.PollHistory = []string{"1111"}
	r := newCachedConfigRepo(t, seed)

	first, err := r.Get(ctx, "100")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	second, err := r.Get(ctx, "100")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first == second {
		t.Fatal("Get() returned the same struct to both callers")
	}

	first.PollHistory = append(first.PollHistory, "2222")
	first.Options[0].Label = "changed"
	first.Enabled = true

	if len(second.PollHistory) != 1 {
		t.Errorf("history leaked across callers: %v", second.PollHistory)
	}
	if second.Options[0].Label == "changed" {
		t.Error("option label leaked across callers")
	}
	if second.Enabled {
		t.Error("field write leaked across callers")
	}
	if len(seed.PollHistory) != 1 {
		t.Errorf("cached copy mutated: %v", seed.PollHistory)
	}
}

func TestConfigRepository_GetConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	seed := models.NewGuildConfig("100")
	seed.PollHistory = []string{"1111"}
	r := newCachedConfigRepo(t, seed)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg, err := r.Get(ctx, "100")
			if err != nil {
				t.Errorf("Get() error = %v", err)
				return
			}
			for j := 0; j < 100; j++ {
				cfg.PollHistory = append(cfg.PollHistory, "2222")
			}
		}()
	}
	wg.Wait()

	if len(seed.PollHistory) != 1 {
		t.Errorf("cached copy mutated by concurrent callers: %d entries", len(seed.PollHistory))
	}
}
