package entities

import "eventplanner/internal/domain"

type NotificationType string

const (
	NotificationAddedToWaitingList       NotificationType = "ADDED_TO_WAITING_LIST"
	NotificationRemovedFromWaitingList   NotificationType = "REMOVED_FROM_WAITING_LIST"
	NotificationAddedToCrew              NotificationType = "ADDED_TO_CREW"
	NotificationRemovedFromCrew          NotificationType = "REMOVED_FROM_CREW"
	NotificationConfirmationRequest      NotificationType = "CONFIRMATION_REQUEST"
	NotificationConfirmationReminder     NotificationType = "CONFIRMATION_REMINDER"
	NotificationNewRegistration          NotificationType = "NEW_REGISTRATION"
	NotificationCrewRegistrationCanceled NotificationType = "CREW_REGISTRATION_CANCELED"
	NotificationRegistrationDeclined     NotificationType = "REGISTRATION_DECLINED"
	NotificationEventCanceled            NotificationType = "EVENT_CANCELED"
)

// Recipient is either a single resolved user or a role broadcast.
type Recipient struct {
	User *UserDetails
	Role domain.Role
}

func (r Recipient) String() string {
	if r.User != nil {
		return "user:" + string(r.User.Key)
	}
	return "role:" + string(r.Role)
}

// Notification is a rendered message ready for a delivery channel.
type Notification struct {
	Type      NotificationType
	EventKey  EventKey
	Recipient Recipient
	Title     string
	Body      string
	Link      string
}
