package poll

import (
	"context"
	"testing"
	"time"

	"github.com/Re4LH/discord-bot/availbot/database/models"
)

func TestActivePolls_RestoreActive(t *testing.T) {
	ctx := context.Background()
	configs := newInMemoryConfigs()
	polls := newInMemoryPolls()

	cfg, _ := configs.Get(ctx, testGuildID.String())
	cfg.Enabled = true
	cfg.ChannelID = testChannelID.String()
	cfg.PollHistory = []string{"1111", "2222", "3333"}
	if err := configs.Save(ctx, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// 3333 has no poll row: its message was pruned from storage and
	// must not resurrect.
	for _, messageID := range []string{"1111", "2222"} {
		if _, err := polls.Create(ctx, &models.Poll{
			GuildID:   testGuildID.String(),
			ChannelID: testChannelID.String(),
			MessageID: messageID,
			DateLabel: "утре неделя, 20 юли 2025",
			Options:   models.DefaultPollOptions(),
			CreatedAt: time.Now(),
		}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	active := NewActivePolls()
	if err := active.RestoreActive(ctx, configs, polls); err != nil {
		t.Fatalf("RestoreActive() error = %v", err)
	}

	if active.Len() != 2 {
		t.Fatalf("restored = %d, want 2", active.Len())
	}
	ap, ok := active.Get(1111)
	if !ok {
		t.Fatal("poll 1111 not restored")
	}
	if ap.GuildID != testGuildID || ap.ChannelID != testChannelID {
		t.Errorf("restored IDs = %s/%s", ap.GuildID, ap.ChannelID)
	}
	if len(ap.Options) != len(models.DefaultPollOptions()) {
		t.Errorf("restored options = %d", len(ap.Options))
	}
	if _, ok := active.Get(3333); ok {
		t.Error("pruned poll restored")
	}
}

func TestActivePolls_RestoreActive_disabledGuild(t *testing.T) {
	ctx := context.Background()
	configs := newInMemoryConfigs()
	polls := newInMemoryPolls()

	// Disabling the schedule only stops future polls; an already
	// posted one keeps collecting votes across restarts.
	cfg, _ := configs.Get(ctx, testGuildID.String())
	cfg.Enabled = false
	cfg.ChannelID = testChannelID.String()
	cfg.PollHistory = []string{"1111"}
	if err := configs.Save(ctx, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := polls.Create(ctx, &models.Poll{
		GuildID:   testGuildID.String(),
		ChannelID: testChannelID.String(),
		MessageID: "1111",
		DateLabel: "утре неделя, 20 юли 2025",
		Options:   models.DefaultPollOptions(),
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	active := NewActivePolls()
	if err := active.RestoreActive(ctx, configs, polls); err != nil {
		t.Fatalf("RestoreActive() error = %v", err)
	}
	if _, ok := active.Get(1111); !ok {
		t.Error("live poll of disabled guild not restored")
	}
}
