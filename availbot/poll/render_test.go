package poll

import (
	"strings"
	"testing"
	"time"

	"github.com/Re4LH/discord-bot/availbot/config"
	"github.com/Re4LH/discord-bot/availbot/database/models"
)

func TestDateLabel(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			name: "midday",
			now:  time.Date(2025, 7, 19, 12, 0, 0, 0, time.UTC),
			want: "утре неделя, 20 юли 2025",
		},
		{
			// 22:00 UTC is already past midnight in Sofia (UTC+3 in
			// summer), so "tomorrow" skips a day relative to UTC.
			name: "late evening crosses local midnight",
			now:  time.Date(2025, 7, 19, 22, 0, 0, 0, time.UTC),
			want: "утре понеделник, 21 юли 2025",
		},
		{
			name: "year boundary",
			now:  time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC),
			want: "утре четвъртък, 1 януари 2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DateLabel(tt.now); got != tt.want {
				t.Errorf("DateLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPollEmbed(t *testing.T) {
	options := []models.PollOption{
		{Emoji: "✅", Label: "Да"},
		{Emoji: "❌", Label: "Не"},
	}

	t.Run("fresh real poll", func(t *testing.T) {
		embed := BuildPollEmbed(options, "утре неделя, 20 юли 2025", false, "My Guild", nil)

		if embed.Color != config.PollColor {
			t.Errorf("color = %#x, want %#x", embed.Color, config.PollColor)
		}
		if !strings.Contains(embed.Description, "утре неделя, 20 юли 2025") {
			t.Errorf("description missing date label: %q", embed.Description)
		}
		if embed.Footer == nil || !strings.Contains(embed.Footer.Text, "My Guild") {
			t.Error("footer missing guild name")
		}
		if len(embed.Fields) != 1 {
			t.Fatalf("fields = %d, want 1", len(embed.Fields))
		}
		if strings.Contains(embed.Fields[0].Value, "→") {
			t.Error("fresh poll renders voter lines")
		}
	})

	t.Run("test poll", func(t *testing.T) {
		embed := BuildPollEmbed(options, "утре неделя, 20 юли 2025", true, "My Guild", nil)

		if embed.Color != config.TestPollColor {
			t.Errorf("color = %#x, want %#x", embed.Color, config.TestPollColor)
		}
		if !strings.Contains(embed.Title, "Тестова") {
			t.Errorf("title = %q, want test poll title", embed.Title)
		}
	})

	t.Run("with votes", func(t *testing.T) {
		tally := map[string][]string{
			"✅": {"Alice", "Bob"},
		}
		embed := BuildPollEmbed(options, "утре неделя, 20 юли 2025", false, "My Guild", tally)

		body := embed.Fields[0].Value
		if !strings.Contains(body, "✅ Да\n    → Alice, Bob") {
			t.Errorf("voters not rendered under option:\n%s", body)
		}
		if strings.Contains(strings.Split(body, "❌")[1], "→") {
			t.Error("empty option renders a voter line")
		}
	})
}
