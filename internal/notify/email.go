package notify

import (
	"context"
	"errors"
	"fmt"

	brevo "github.com/getbrevo/brevo-go/lib"
)

// Email sends notifications through Brevo's transactional email API.
type Email struct {
	From   string
	To     string
	client *brevo.APIClient
}

func NewEmail(apiKey, from, to string) *Email {
	if apiKey == "" || from == "" || to == "" {
		return nil
	}
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)
	return &Email{
		From:   from,
		To:     to,
		client: brevo.NewAPIClient(cfg),
	}
}

func (e *Email) Send(ctx context.Context, title, text string) error {
	if e == nil || e.client == nil {
		return errors.New("email disabled")
	}
	email := brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  "hostwatch",
			Email: e.From,
		},
		To: []brevo.SendSmtpEmailTo{
			{Email: e.To},
		},
		Subject:     title,
		HtmlContent: fmt.Sprintf("<pre>%s</pre>", text),
		TextContent: text,
	}
	_, _, err := e.client.TransactionalEmailsApi.SendTransacEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("brevo send: %w", err)
	}
	return nil
}
