package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/practicehq/calendar-backend/internal/model"
)

// Client talks to the external messaging dispatcher. The dispatcher owns
// actual SMS and email delivery plus recipient deduplication; this client
// only hands over specs and replies.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type broadcastRequest struct {
	EventID        int64                `json:"eventId"`
	Kind           model.EventKind      `json:"kind"`
	Spec           *model.BroadcastSpec `json:"spec"`
	AttendeeEmails []string             `json:"attendeeEmails"`
}

type broadcastResponse struct {
	SentCount int    `json:"sentCount"`
	Message   string `json:"message"`
}

// SendBroadcast submits one due broadcast and returns the delivered count.
func (c *Client) SendBroadcast(ctx context.Context, event *model.Event) (int, error) {
	emails := make([]string, 0, len(event.Attendees))
	for _, a := range event.Attendees {
		emails = append(emails, a.Email)
	}

	eventID, err := eventIDOf(event)
	if err != nil {
		return 0, fmt.Errorf("dispatcher.SendBroadcast: %w", err)
	}

	req := &broadcastRequest{
		EventID:        eventID,
		Kind:           event.Meta.Kind,
		Spec:           event.Meta.Broadcast,
		AttendeeEmails: emails,
	}

	var resp broadcastResponse
	if err := c.post(ctx, "/broadcasts", req, &resp); err != nil {
		return 0, fmt.Errorf("dispatcher.SendBroadcast: %w", err)
	}
	return resp.SentCount, nil
}

type rsvpRequest struct {
	EventID        int64                `json:"eventId"`
	UID            string               `json:"uid"`
	OrganizerEmail string               `json:"organizerEmail"`
	Response       model.ResponseStatus `json:"response"`
	FromEmail      string               `json:"fromEmail"`
}

// SendRSVPResponse relays the attendee's reply to the organizer.
func (c *Client) SendRSVPResponse(ctx context.Context, invite *model.ICalInviteState, response model.ResponseStatus) error {
	req := &rsvpRequest{
		EventID:        invite.EventID,
		UID:            invite.UID,
		OrganizerEmail: invite.OrganizerEmail,
		Response:       response,
		FromEmail:      invite.RespondedBy,
	}

	if err := c.post(ctx, "/rsvp-responses", req, nil); err != nil {
		return fmt.Errorf("dispatcher.SendRSVPResponse: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, dst interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("dispatcher returned status %d", resp.StatusCode)
	}

	if dst == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
