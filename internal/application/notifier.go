package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"eventplanner/internal/domain"
	"eventplanner/internal/domain/crew"
	"eventplanner/internal/domain/entities"
	"eventplanner/internal/ports/output"
	"eventplanner/pkg/tz"
)

// NotifierConfig configures link building and message rendering. Clock dates
// the links of events without a start.
type NotifierConfig struct {
	BaseURL       string
	DefaultLocale string
	Logger        *slog.Logger
	Clock         Clock
}

// Notifier renders notifications and hands them to the sink. Delivery
// problems are logged and never returned to the triggering operation.
type Notifier struct {
	users      output.UserDirectory
	sink       output.NotificationSink
	translator output.T
	baseURL    string
	locale     string
	logger     *slog.Logger
	clock      Clock
}

func NewNotifier(users output.UserDirectory, sink output.NotificationSink, translator output.T, cfg NotifierConfig) *Notifier {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	locale := cfg.DefaultLocale
	if locale == "" {
		locale = "de"
	}
	return &Notifier{
		users:      users,
		sink:       sink,
		translator: translator,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		locale:     locale,
		logger:     logger,
		clock:      cfg.Clock,
	}
}

// crewChanges sends added-to-crew and removed-from-crew notices for diff.
func (n *Notifier) crewChanges(ctx context.Context, before, after entities.Event, diff crew.Diff) {
	for _, key := range diff.Added {
		if reg, ok := after.Registration(key); ok {
			n.toRegistrant(ctx, entities.NotificationAddedToCrew, after, reg, nil)
		}
	}
	for _, key := range diff.Removed {
		// A removed registration may be gone from after entirely.
		reg, ok := after.Registration(key)
		if !ok {
			reg, ok = before.Registration(key)
		}
		if ok {
			n.toRegistrant(ctx, entities.NotificationRemovedFromCrew, after, reg, nil)
		}
	}
}

// toRegistrant notifies the user behind reg. Guests cannot be reached.
func (n *Notifier) toRegistrant(ctx context.Context, typ entities.NotificationType, event entities.Event, reg entities.Registration, extra map[string]any) {
	if reg.IsGuest() {
		n.logger.Debug("skipping notification for guest registration",
			"type", typ, "event", event.Key, "registration", reg.Key)
		return
	}
	user, ok, err := n.users.FindByKey(ctx, reg.User)
	if err != nil {
		n.logger.Warn("resolve notification recipient failed",
			"type", typ, "event", event.Key, "user", reg.User, "error", err)
		return
	}
	if !ok {
		n.logger.Warn("notification recipient not found",
			"type", typ, "event", event.Key, "user", reg.User)
		return
	}

	data := n.eventData(event)
	data["Name"] = user.DisplayName()
	data["Position"] = string(reg.Position)
	for k, v := range extra {
		data[k] = v
	}
	locale := user.Locale
	if locale == "" {
		locale = n.locale
	}
	n.dispatch(ctx, entities.Notification{
		Type:      typ,
		EventKey:  event.Key,
		Recipient: entities.Recipient{User: &user},
		Title:     n.translator.T(locale, messageKey(typ, "title"), data),
		Body:      n.translator.T(locale, messageKey(typ, "body"), data),
		Link:      n.EventLink(event),
	})
}

// toRole broadcasts a notice about reg to everyone holding role.
func (n *Notifier) toRole(ctx context.Context, typ entities.NotificationType, role domain.Role, event entities.Event, reg entities.Registration, extra map[string]any) {
	data := n.eventData(event)
	data["Registrant"] = n.registrantName(ctx, reg)
	data["Position"] = string(reg.Position)
	for k, v := range extra {
		data[k] = v
	}
	n.dispatch(ctx, entities.Notification{
		Type:      typ,
		EventKey:  event.Key,
		Recipient: entities.Recipient{Role: role},
		Title:     n.translator.T(n.locale, messageKey(typ, "title"), data),
		Body:      n.translator.T(n.locale, messageKey(typ, "body"), data),
		Link:      n.EventLink(event),
	})
}

func (n *Notifier) dispatch(ctx context.Context, notification entities.Notification) {
	if err := n.sink.Dispatch(ctx, notification); err != nil {
		n.logger.Warn("notification dispatch failed",
			"type", notification.Type,
			"recipient", notification.Recipient.String(),
			"event", notification.EventKey,
			"error", err,
		)
	}
}

func (n *Notifier) registrantName(ctx context.Context, reg entities.Registration) string {
	if reg.IsGuest() {
		return reg.Name
	}
	user, ok, err := n.users.FindByKey(ctx, reg.User)
	if err != nil || !ok {
		return string(reg.User)
	}
	return user.DisplayName()
}

func (n *Notifier) eventData(event entities.Event) map[string]any {
	return map[string]any{
		"EventName":  event.Name,
		"EventStart": tz.FormatDateTime(event.Start),
		"EventEnd":   tz.FormatDateTime(event.End),
		"Link":       n.EventLink(event),
	}
}

// EventLink points at the event details page.
func (n *Notifier) EventLink(event entities.Event) string {
	year := event.Start.In(tz.Berlin).Year()
	if event.Start.IsZero() {
		year = n.clock.now().In(tz.Berlin).Year()
	}
	return fmt.Sprintf("%s/events/%d/details/%s", n.baseURL, year, url.PathEscape(string(event.Key)))
}

// ActionLink builds the unauthenticated confirm or decline link of reg.
func (n *Notifier) ActionLink(event entities.Event, reg entities.Registration, action string) string {
	return fmt.Sprintf("%s/events/%s/registrations/%s/%s?accessKey=%s",
		n.baseURL,
		url.PathEscape(string(event.Key)),
		url.PathEscape(string(reg.Key)),
		action,
		url.QueryEscape(reg.AccessKey),
	)
}

func messageKey(typ entities.NotificationType, part string) string {
	return "notification." + strings.ToLower(string(typ)) + "." + part
}
