package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Re4LH/discord-bot/availbot/poll"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

func (h *PollHandler) HandleTest(e *handler.CommandEvent) error {
	if ok, err := requireManageGuild(e); !ok {
		return err
	}

	// Posting plus seven reactions can outlive the 3s interaction
	// window.
	if err := e.DeferCreateMessage(true); err != nil {
		return fmt.Errorf("failed to defer message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.bot.Publisher.PublishTest(ctx, *e.GuildID(), e.ChannelID()); err != nil {
		return updatePublishError(e, err)
	}

	_, err := e.UpdateInteractionResponse(discord.MessageUpdate{
		Content: strPtr("✅ Тестовата анкета е публикувана. Резултатите се обновяват на живо."),
	})
	return err
}

func (h *PollHandler) HandleManual(e *handler.CommandEvent) error {
	if ok, err := requireManageGuild(e); !ok {
		return err
	}

	if err := e.DeferCreateMessage(true); err != nil {
		return fmt.Errorf("failed to defer message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.bot.Publisher.Publish(ctx, *e.GuildID()); err != nil {
		return updatePublishError(e, err)
	}

	_, err := e.UpdateInteractionResponse(discord.MessageUpdate{
		Content: strPtr("✅ Анкетата е публикувана. Резултатите се обновяват на живо."),
	})
	return err
}

func updatePublishError(e *handler.CommandEvent, err error) error {
	msg := "Анкетата не можа да бъде публикувана."
	switch {
	case errors.Is(err, poll.ErrNoChannelConfigured):
		msg = "Няма зададен канал за анкети. Използвай `/poll setup`."
	case errors.Is(err, poll.ErrChannelPermissionDenied):
		msg = "Ботът няма права да пише или да добавя реакции в канала за анкети."
	}
	_, uerr := e.UpdateInteractionResponse(discord.MessageUpdate{
		Content: strPtr("❌ " + msg),
	})
	if uerr != nil {
		return uerr
	}
	return err
}

func strPtr(s string) *string {
	return &s
}
