package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/phillip/helping-hands-go/models"
)

// email request payload for ZeptoMail API
type emailRequest struct {
	From     emailAddress  `json:"from"`
	To       []toRecipient `json:"to"`
	Subject  string        `json:"subject"`
	HtmlBody string        `json:"htmlbody"`
}

type emailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type toRecipient struct {
	Email emailAddress `json:"email_address"`
}

const sendAttempts = 3

var joinedTemplate = template.Must(template.New("joined").Parse(
	`<p>Hi {{.Name}},</p>
<p>You are registered for <strong>{{.Title}}</strong>.</p>
<p>When: {{.When}}<br>Where: {{.Location}}</p>
<p>Thank you for helping out!</p>
`))

// Mailer sends HTML email through the ZeptoMail HTTP API.
type Mailer struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
	log    *slog.Logger
}

func NewMailer(apiURL, apiKey, from string, log *slog.Logger) (*Mailer, error) {
	if apiURL == "" || apiKey == "" || from == "" {
		return nil, errors.New("missing ZEPTO_API_URL, ZEPTO_API_KEY or EMAIL_FROM")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Mailer{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log,
	}, nil
}

// SendEmail delivers one message, retrying network failures and 5xx answers.
func (m *Mailer) SendEmail(ctx context.Context, to, toName, subject, body string) error {
	payload := emailRequest{
		From:     emailAddress{Address: m.from},
		To:       []toRecipient{{Email: emailAddress{Address: to, Name: toName}}},
		Subject:  subject,
		HtmlBody: body,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	send := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(jsonData))
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", m.apiKey)

		resp, err := m.client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted:
			return struct{}{}, nil
		case resp.StatusCode >= http.StatusInternalServerError:
			return struct{}{}, fmt.Errorf("zeptomail API error: %s", resp.Status)
		default:
			return struct{}{}, backoff.Permanent(fmt.Errorf("zeptomail API error: %s", resp.Status))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	_, err = backoff.Retry(ctx, send,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(sendAttempts),
	)
	if err != nil {
		return err
	}

	m.log.Info("email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

// NotifyJoined sends the participant a confirmation for the event they
// joined.
func (m *Mailer) NotifyJoined(ctx context.Context, event *models.Event, p models.Participant) error {
	var body bytes.Buffer
	err := joinedTemplate.Execute(&body, struct {
		Name, Title, When, Location string
	}{
		Name:     p.DisplayName,
		Title:    event.Title,
		When:     event.EventDate.UTC().Format("Mon, 02 Jan 2006 15:04 MST"),
		Location: event.Location,
	})
	if err != nil {
		return fmt.Errorf("render join email: %w", err)
	}
	return m.SendEmail(ctx, p.Email, p.DisplayName, "You're in: "+event.Title, body.String())
}
