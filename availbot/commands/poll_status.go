package commands

import (
	"fmt"
	"strings"

	"github.com/Re4LH/discord-bot/availbot/config"
	"github.com/Re4LH/discord-bot/availbot/utils"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

func (h *PollHandler) HandleStatus(e *handler.CommandEvent) error {
	ctx, cancel := commandContext()
	defer cancel()

	cfg, err := h.bot.ConfigRepository.Get(ctx, e.GuildID().String())
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат заредени.")
	}

	state := "🔴 Изключени"
	if cfg.Enabled {
		state = "🟢 Включени"
	}

	channel := "не е зададен"
	if cfg.ChannelID != "" {
		channel = fmt.Sprintf("<#%s>", cfg.ChannelID)
	}

	var opts strings.Builder
	for _, opt := range cfg.Options {
		fmt.Fprintf(&opts, "%s %s\n", opt.Emoji, opt.Label)
	}

	eb := discord.NewEmbedBuilder().
		SetTitle("📊 Настройки на анкетите").
		SetColor(config.InfoColor).
		AddField("Състояние", state, true).
		AddField("Канал", channel, true).
		AddField("Час", fmt.Sprintf("%02d:%02d (%s)", cfg.PollHour, cfg.PollMinute, cfg.Timezone), true).
		AddField("Варианти", opts.String(), false)

	if next, ok := h.bot.Scheduler.NextFireTime(*e.GuildID()); ok {
		eb.AddField("Следваща анкета", fmt.Sprintf("<t:%d:F>", next.Unix()), false)
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{eb.Build()},
	})
}

func (h *PollHandler) HandleNext(e *handler.CommandEvent) error {
	next, ok := h.bot.Scheduler.NextFireTime(*e.GuildID())
	if !ok {
		return utils.EH.CreateInfoEmbed(e, "Няма насрочена анкета. Включи ги с `/poll enable`.")
	}
	return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("Следващата анкета е <t:%d:F> (<t:%d:R>).", next.Unix(), next.Unix()))
}

func (h *PollHandler) HandlePermissions(e *handler.CommandEvent) error {
	var perms discord.Permissions
	if p := e.AppPermissions(); p != nil {
		perms = *p
	}

	checks := []struct {
		name string
		perm discord.Permissions
	}{
		{"Изпращане на съобщения", discord.PermissionSendMessages},
		{"Вграждане на линкове", discord.PermissionEmbedLinks},
		{"Добавяне на реакции", discord.PermissionAddReactions},
		{"История на съобщенията", discord.PermissionViewChannel},
		{"Управление на съобщения", discord.PermissionManageMessages},
	}

	var b strings.Builder
	allGood := true
	for _, c := range checks {
		if perms.Has(c.perm) {
			fmt.Fprintf(&b, "✅ %s\n", c.name)
		} else {
			fmt.Fprintf(&b, "❌ %s\n", c.name)
			allGood = false
		}
	}

	color := config.SuccessColor
	title := "✅ Всички нужни права са налични"
	if !allGood {
		color = config.WarningColor
		title = "⚠️ Липсват права в този канал"
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{
			discord.NewEmbedBuilder().
				SetTitle(title).
				SetDescription(b.String()).
				SetColor(color).
				Build(),
		},
	})
}
