package poll

import (
	"fmt"
	"strings"
	"time"

	"github.com/Re4LH/discord-bot/availbot/config"
	"github.com/Re4LH/discord-bot/availbot/database/models"
	"github.com/disgoorg/disgo/discord"
)

var bulgarianDays = map[time.Weekday]string{
	time.Monday:    "понеделник",
	time.Tuesday:   "вторник",
	time.Wednesday: "сряда",
	time.Thursday:  "четвъртък",
	time.Friday:    "петък",
	time.Saturday:  "събота",
	time.Sunday:    "неделя",
}

var bulgarianMonths = map[time.Month]string{
	time.January:   "януари",
	time.February:  "февруари",
	time.March:     "март",
	time.April:     "април",
	time.May:       "май",
	time.June:      "юни",
	time.July:      "юли",
	time.August:    "август",
	time.September: "септември",
	time.October:   "октомври",
	time.November:  "ноември",
	time.December:  "декември",
}

// DateLabel renders tomorrow's date relative to now in Bulgarian,
// e.g. "утре понеделник, 20 юли 2025". Tomorrow is computed in the
// fixed display timezone, not the guild's scheduling timezone.
func DateLabel(now time.Time) string {
	loc, err := time.LoadLocation(config.DisplayTimezone)
	if err != nil {
		loc = time.UTC
	}
	tomorrow := now.In(loc).AddDate(0, 0, 1)
	return fmt.Sprintf("утре %s, %d %s %d",
		bulgarianDays[tomorrow.Weekday()],
		tomorrow.Day(),
		bulgarianMonths[tomorrow.Month()],
		tomorrow.Year())
}

// BuildPollEmbed renders the poll message. The tally maps emoji to
// voter display names in vote order; a nil tally renders the fresh
// poll with no voters.
func BuildPollEmbed(options []models.PollOption, dateLabel string, isTest bool, guildName string, tally map[string][]string) discord.Embed {
	var b strings.Builder
	for _, opt := range options {
		b.WriteString(opt.Emoji)
		b.WriteString(" ")
		b.WriteString(opt.Label)
		if voters := tally[opt.Emoji]; len(voters) > 0 {
			b.WriteString("\n    → ")
			b.WriteString(strings.Join(voters, ", "))
		}
		b.WriteString("\n")
	}

	eb := discord.NewEmbedBuilder().
		AddField("Реагирайте с вашата наличност:", b.String(), false).
		SetTimestamp(time.Now())

	if isTest {
		eb.SetTitle("🧪 Тестова анкета").
			SetDescription(fmt.Sprintf("**Това е тестова анкета - Кой може да играе %s?**", dateLabel)).
			SetColor(config.TestPollColor).
			SetFooterText("Това е тестова анкета • Резултатите се обновяват на живо")
	} else {
		eb.SetTitle("🎮 Ежедневна анкета за наличност").
			SetDescription(fmt.Sprintf("**Кой може да играе %s?**", dateLabel)).
			SetColor(config.PollColor).
			SetFooterText(fmt.Sprintf("Анкета за %s • Резултатите се обновяват на живо", guildName))
	}

	return eb.Build()
}
