package sendgrid

import (
	"context"
	"fmt"
	"strings"

	"github.com/farma-ya/pharmacy-platform/internal/models"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailService interface {
	Send(ctx context.Context, req *models.EmailNotificationRequest) error
	SendOrderConfirmation(ctx context.Context, to string, order *models.Order) error
}

type emailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey string, fromEmail string, fromName string) EmailService {
	return &emailService{client: sendgrid.NewSendClient(apiKey), fromEmail: fromEmail, fromName: fromName}
}

func (e *emailService) Send(ctx context.Context, req *models.EmailNotificationRequest) error {

	from := mail.NewEmail(e.fromName, e.fromEmail)
	to := mail.NewEmail("", req.To)

	message := mail.NewV3Mail()
	message.SetFrom(from)

	personalization := mail.NewPersonalization()
	personalization.AddTos(to)

	for _, cc := range req.CC {
		personalization.AddCCs(mail.NewEmail("", cc))
	}

	for _, bcc := range req.BCC {
		personalization.AddBCCs(mail.NewEmail("", bcc))
	}

	personalization.Subject = req.Subject
	message.AddPersonalizations(personalization)

	message.AddContent(mail.NewContent("text/plain", req.Content))

	if req.HTMLContent != "" {
		message.AddContent(mail.NewContent("text/html", req.HTMLContent))
	}

	response, err := e.client.Send(message)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	return nil
}

// SendOrderConfirmation renders the confirmation for a freshly placed order.
func (e *emailService) SendOrderConfirmation(ctx context.Context, to string, order *models.Order) error {

	var lines strings.Builder

	for _, item := range order.Items {
		fmt.Fprintf(&lines, "- %s x%d (%s)\n", item.ProductName, item.Quantity, item.Subtotal.StringFixed(2))
	}

	content := fmt.Sprintf(
		"Thank you for your purchase!\n\nOrder %s\n\nItems:\n%s\nTotal: %s\n\nWe will notify you when your order is on the way.",
		order.OrderNumber, lines.String(), order.Total.StringFixed(2))

	return e.Send(ctx, &models.EmailNotificationRequest{
		To:      to,
		Subject: fmt.Sprintf("Order confirmation %s", order.OrderNumber),
		Content: content,
	})
}
