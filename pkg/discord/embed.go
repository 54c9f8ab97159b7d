package discord

import (
	"github.com/bwmarrin/discordgo"

	"eventplanner/internal/domain/entities"
)

// Discord rejects embeds beyond these lengths (in runes).
const (
	maxTitleLength       = 256
	maxDescriptionLength = 4096
)

const (
	colorNeutral = 0x5865F2
	colorGood    = 0x57F287
	colorWarning = 0xFEE75C
	colorBad     = 0xED4245
)

var notificationColors = map[entities.NotificationType]int{
	entities.NotificationAddedToCrew:              colorGood,
	entities.NotificationRemovedFromCrew:          colorBad,
	entities.NotificationRemovedFromWaitingList:   colorBad,
	entities.NotificationEventCanceled:            colorBad,
	entities.NotificationConfirmationRequest:      colorWarning,
	entities.NotificationConfirmationReminder:     colorWarning,
	entities.NotificationCrewRegistrationCanceled: colorWarning,
	entities.NotificationRegistrationDeclined:     colorWarning,
}

// BuildNotificationEmbed renders a notification as a single embed. The title
// links to the notification's deep link when it has one.
func BuildNotificationEmbed(n entities.Notification) *discordgo.MessageEmbed {
	color, ok := notificationColors[n.Type]
	if !ok {
		color = colorNeutral
	}
	return &discordgo.MessageEmbed{
		Title:       truncate(n.Title, maxTitleLength),
		Description: truncate(n.Body, maxDescriptionLength),
		URL:         n.Link,
		Color:       color,
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
