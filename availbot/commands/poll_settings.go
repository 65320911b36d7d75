package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Re4LH/discord-bot/availbot/config"
	"github.com/Re4LH/discord-bot/availbot/database/models"
	"github.com/Re4LH/discord-bot/availbot/utils"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

// requireManageGuild gates configuration subcommands to server
// managers. It replies on its own when the check fails.
func requireManageGuild(e *handler.CommandEvent) (bool, error) {
	member := e.Member()
	if member == nil || !member.Permissions.Has(discord.PermissionManageGuild) {
		return false, utils.EH.CreateEphemeralError(e, "Нужно е правото **Manage Server**, за да управляваш анкетите.")
	}
	return true, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), config.CommandTimeout)
}

func (h *PollHandler) HandleSetup(e *handler.CommandEvent) error {
	if ok, err := requireManageGuild(e); !ok {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	data := e.SlashCommandInteractionData()
	channel := data.Channel("channel")

	cfg, err := h.bot.ConfigRepository.Get(ctx, e.GuildID().String())
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат заредени.")
	}

	cfg.ChannelID = channel.ID.String()
	if hour, ok := data.OptInt("hour"); ok {
		cfg.PollHour = hour
	}
	if minute, ok := data.OptInt("minute"); ok {
		cfg.PollMinute = minute
	}
	if tz, ok := data.OptString("timezone"); ok {
		if !validTimezone(tz) {
			return replyInvalidTimezone(e, tz)
		}
		cfg.Timezone = tz
	}
	cfg.Enabled = true

	if err := h.bot.ConfigRepository.Save(ctx, cfg); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат записани.")
	}
	if err := h.bot.ApplySchedule(*e.GuildID(), cfg.Enabled, cfg.PollHour, cfg.PollMinute, cfg.Timezone); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Графикът не можа да бъде обновен.")
	}

	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
		"Анкетите са настроени: канал <#%s>, всеки ден в **%02d:%02d** (%s).",
		cfg.ChannelID, cfg.PollHour, cfg.PollMinute, cfg.Timezone))
}

func (h *PollHandler) HandleChannel(e *handler.CommandEvent) error {
	if ok, err := requireManageGuild(e); !ok {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	channel := e.SlashCommandInteractionData().Channel("channel")

	cfg, err := h.bot.ConfigRepository.Get(ctx, e.GuildID().String())
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат заредени.")
	}

	cfg.ChannelID = channel.ID.String()
	if err := h.bot.ConfigRepository.Save(ctx, cfg); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат записани.")
	}

	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Каналът за анкети е сменен на <#%s>.", cfg.ChannelID))
}

func (h *PollHandler) HandleTime(e *handler.CommandEvent) error {
	if ok, err := requireManageGuild(e); !ok {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	data := e.SlashCommandInteractionData()

	cfg, err := h.bot.ConfigRepository.Get(ctx, e.GuildID().String())
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат заредени.")
	}

	cfg.PollHour = data.Int("hour")
	if minute, ok := data.OptInt("minute"); ok {
		cfg.PollMinute = minute
	} else {
		cfg.PollMinute = 0
	}

	if err := h.bot.ConfigRepository.Save(ctx, cfg); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат записани.")
	}
	if err := h.bot.ApplySchedule(*e.GuildID(), cfg.Enabled, cfg.PollHour, cfg.PollMinute, cfg.Timezone); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Графикът не можа да бъде обновен.")
	}

	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
		"Анкетата ще се публикува всеки ден в **%02d:%02d** (%s).", cfg.PollHour, cfg.PollMinute, cfg.Timezone))
}

func (h *PollHandler) HandleTimezone(e *handler.CommandEvent) error {
	if ok, err := requireManageGuild(e); !ok {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	tz := e.SlashCommandInteractionData().String("timezone")
	if !validTimezone(tz) {
		return replyInvalidTimezone(e, tz)
	}

	cfg, err := h.bot.ConfigRepository.Get(ctx, e.GuildID().String())
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат заредени.")
	}

	cfg.Timezone = tz
	if err := h.bot.ConfigRepository.Save(ctx, cfg); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат записани.")
	}
	if err := h.bot.ApplySchedule(*e.GuildID(), cfg.Enabled, cfg.PollHour, cfg.PollMinute, cfg.Timezone); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Графикът не можа да бъде обновен.")
	}

	loc, _ := time.LoadLocation(tz)
	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
		"Часовата зона е сменена на **%s** (сега там е %s).", tz, time.Now().In(loc).Format("15:04")))
}

func replyInvalidTimezone(e *handler.CommandEvent, tz string) error {
	suggestions := suggestTimezones(tz, 3)
	msg := fmt.Sprintf("Непозната часова зона: `%s`.", tz)
	if len(suggestions) > 0 {
		msg += fmt.Sprintf(" Може би имаше предвид: `%s`?", strings.Join(suggestions, "`, `"))
	}
	return utils.EH.CreateErrorEmbed(e, msg)
}

func (h *PollHandler) HandleOptions(e *handler.CommandEvent) error {
	if ok, err := requireManageGuild(e); !ok {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	raw := e.SlashCommandInteractionData().String("labels")
	var labels []string
	for _, part := range strings.Split(raw, "|") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			labels = append(labels, trimmed)
		}
	}
	if len(labels) == 0 {
		return utils.EH.CreateErrorEmbed(e, "Подай поне един вариант, разделен с `|`.")
	}
	if len(labels) > config.MaxPollOptions {
		return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("Максимум %d варианта.", config.MaxPollOptions))
	}

	cfg, err := h.bot.ConfigRepository.Get(ctx, e.GuildID().String())
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат заредени.")
	}

	options := make([]models.PollOption, len(labels))
	for i, label := range labels {
		options[i] = models.PollOption{Emoji: config.PollEmojis[i], Label: label}
	}
	cfg.Options = options

	if err := h.bot.ConfigRepository.Save(ctx, cfg); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат записани.")
	}

	var b strings.Builder
	for _, opt := range cfg.Options {
		fmt.Fprintf(&b, "%s %s\n", opt.Emoji, opt.Label)
	}
	return utils.EH.CreateSuccessEmbed(e, "Новите варианти:\n"+b.String())
}

func (h *PollHandler) HandleEnable(e *handler.CommandEvent) error {
	if ok, err := requireManageGuild(e); !ok {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	cfg, err := h.bot.ConfigRepository.Get(ctx, e.GuildID().String())
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат заредени.")
	}
	if cfg.ChannelID == "" {
		return utils.EH.CreateErrorEmbed(e, "Първо задай канал с `/poll setup` или `/poll channel`.")
	}

	cfg.Enabled = true
	if err := h.bot.ConfigRepository.Save(ctx, cfg); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат записани.")
	}
	if err := h.bot.ApplySchedule(*e.GuildID(), true, cfg.PollHour, cfg.PollMinute, cfg.Timezone); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Графикът не можа да бъде обновен.")
	}

	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
		"Ежедневните анкети са **включени** - всеки ден в %02d:%02d (%s).", cfg.PollHour, cfg.PollMinute, cfg.Timezone))
}

func (h *PollHandler) HandleDisable(e *handler.CommandEvent) error {
	if ok, err := requireManageGuild(e); !ok {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	cfg, err := h.bot.ConfigRepository.Get(ctx, e.GuildID().String())
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат заредени.")
	}

	cfg.Enabled = false
	if err := h.bot.ConfigRepository.Save(ctx, cfg); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Настройките не можаха да бъдат записани.")
	}
	h.bot.Scheduler.Unschedule(*e.GuildID())

	return utils.EH.CreateSuccessEmbed(e, "Ежедневните анкети са **изключени**.")
}
