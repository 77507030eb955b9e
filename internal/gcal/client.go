// Package gcal is the remote-calendar collaborator: it lists the observed
// state of the target Google calendar and applies mutation plans to it.
//
// All Calendar API access goes through the API interface so the batch and
// listing logic is testable against a fake service.
package gcal

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	appLog "entsync/internal/log"
	"entsync/internal/model"
)

const (
	// markerKey / markerValue form the ownership marker stamped into the
	// private extended properties of every event this tool creates. The
	// diff engine's deletion gate keys off its presence.
	markerKey   = "managedBy"
	markerValue = "entsync"

	// listPageSize is the Calendar API maximum for events.list.
	listPageSize = 2500
)

// API is the minimal Calendar surface the client needs. The production
// implementation wraps *calendar.Service; tests substitute a fake.
type API interface {
	List(ctx context.Context, timeMin, pageToken string) (*calendar.Events, error)
	Insert(ctx context.Context, ev *calendar.Event) error
	Update(ctx context.Context, eventID string, ev *calendar.Event) error
	Delete(ctx context.Context, eventID string) error
}

// Client reconciles against one target calendar.
type Client struct {
	api API
}

// NewClient authenticates with a service-account key file and binds to the
// given calendar. A missing key file is reported before any network access.
func NewClient(ctx context.Context, credentialsFile, calendarID string) (*Client, error) {
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("service account key: %w", err)
	}

	svc, err := calendar.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}

	return &Client{api: &googleAPI{svc: svc, calendarID: calendarID}}, nil
}

// NewClientWithAPI wires a custom API implementation; used by tests.
func NewClientWithAPI(api API) *Client {
	return &Client{api: api}
}

// ListUpcoming pages through all events starting at or after now and
// returns them as id → ObservedEntry.
//
// Every page must be fetched before the diff runs: a partial observed map
// would make absent entries look deleted. Any page error therefore fails
// the whole listing.
func (c *Client) ListUpcoming(ctx context.Context, now time.Time) (map[string]model.ObservedEntry, error) {
	observed := make(map[string]model.ObservedEntry)
	timeMin := now.UTC().Format(time.RFC3339)

	pageToken := ""
	pages := 0
	for {
		events, err := c.api.List(ctx, timeMin, pageToken)
		if err != nil {
			return nil, fmt.Errorf("events list: %w", err)
		}
		pages++

		for _, item := range events.Items {
			if item.Id == "" {
				continue
			}
			observed[item.Id] = observedFromEvent(item)
		}

		pageToken = events.NextPageToken
		if pageToken == "" {
			break
		}
	}

	appLog.Info("observed state fetched", "events", len(observed), "pages", pages)
	return observed, nil
}

// observedFromEvent reduces a remote event to the fields the diff compares.
func observedFromEvent(e *calendar.Event) model.ObservedEntry {
	out := model.ObservedEntry{
		ID:          e.Id,
		Summary:     e.Summary,
		Location:    e.Location,
		Description: e.Description,
		// Absent reminder config means the calendar default applies.
		RemindersUseDefault: e.Reminders == nil || e.Reminders.UseDefault,
	}
	if e.ExtendedProperties != nil {
		out.Owned = e.ExtendedProperties.Private[markerKey] == markerValue
	}
	return out
}

// eventFromDesired builds the full remote payload for a desired entry,
// including the ownership marker.
func eventFromDesired(d model.DesiredEntry) *calendar.Event {
	ev := &calendar.Event{
		Id:          d.ID,
		Summary:     d.Summary,
		Location:    d.Location,
		Description: d.Description,
		Start:       &calendar.EventDateTime{DateTime: d.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: d.End.Format(time.RFC3339)},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{markerKey: markerValue},
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			// UseDefault=false is zero-valued and would be dropped from
			// the JSON body without ForceSendFields.
			ForceSendFields: []string{"UseDefault"},
		},
	}
	if d.ReminderMinutes != nil {
		ev.Reminders.Overrides = []*calendar.EventReminder{
			{Method: "popup", Minutes: *d.ReminderMinutes},
		}
	}
	return ev
}

// googleAPI is the production API implementation over *calendar.Service.
type googleAPI struct {
	svc        *calendar.Service
	calendarID string
}

func (g *googleAPI) List(ctx context.Context, timeMin, pageToken string) (*calendar.Events, error) {
	call := g.svc.Events.List(g.calendarID).
		TimeMin(timeMin).
		SingleEvents(true).
		MaxResults(listPageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Do()
}

func (g *googleAPI) Insert(ctx context.Context, ev *calendar.Event) error {
	_, err := g.svc.Events.Insert(g.calendarID, ev).Context(ctx).Do()
	return err
}

func (g *googleAPI) Update(ctx context.Context, eventID string, ev *calendar.Event) error {
	_, err := g.svc.Events.Update(g.calendarID, eventID, ev).Context(ctx).Do()
	return err
}

func (g *googleAPI) Delete(ctx context.Context, eventID string) error {
	return g.svc.Events.Delete(g.calendarID, eventID).Context(ctx).Do()
}
