package commands

import (
	"fmt"
	"strings"

	"github.com/Re4LH/discord-bot/availbot/config"
	"github.com/Re4LH/discord-bot/availbot/database/models"
	"github.com/Re4LH/discord-bot/availbot/utils"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
)

func (h *PollHandler) HandleHistory(e *handler.CommandEvent) error {
	ctx, cancel := commandContext()
	defer cancel()

	polls, err := h.bot.PollRepository.ListByGuild(ctx, e.GuildID().String(), 0)
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Историята не можа да бъде заредена.")
	}
	if len(polls) == 0 {
		return utils.EH.CreateInfoEmbed(e, "Все още няма публикувани анкети.")
	}

	// Vote counts are read up front so page rendering stays
	// synchronous.
	counts := make(map[int64]int, len(polls))
	for _, p := range polls {
		votes, err := h.bot.VoteRepository.ListByPoll(ctx, p.ID)
		if err != nil {
			continue
		}
		counts[p.ID] = len(votes)
	}

	perPage := config.PollsPerHistoryPage
	totalPages := (len(polls) + perPage - 1) / perPage

	return h.bot.Paginator.Create(e.Respond, paginator.Pages{
		ID:      e.ID().String(),
		Creator: e.User().ID,
		PageFunc: func(page int, embed *discord.EmbedBuilder) {
			start := page * perPage
			end := min(start+perPage, len(polls))

			var description strings.Builder
			for _, p := range polls[start:end] {
				description.WriteString(formatHistoryEntry(p, counts[p.ID]))
				description.WriteString("\n")
			}

			embed.SetTitle("📜 История на анкетите").
				SetDescription(description.String()).
				SetColor(config.InfoColor).
				SetFooterText(fmt.Sprintf("Страница %d/%d", page+1, totalPages))
		},
		Pages:      totalPages,
		ExpireMode: paginator.ExpireModeAfterLastUsage,
	}, false)
}

func formatHistoryEntry(p *models.Poll, votes int) string {
	kind := "🎮"
	if p.IsTest {
		kind = "🧪"
	}
	return fmt.Sprintf("%s **%s**\nПубликувана <t:%d:R> • %d гласа\n",
		kind, p.DateLabel, p.CreatedAt.Unix(), votes)
}
