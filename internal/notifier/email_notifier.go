package notifier

import (
	"context"
	"errors"
	"fmt"
	htmlpkg "html"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	config "github.com/Keoroanthony/go-ecommerce-api/configs"
)

// SESClient is the slice of the SES API the email sender needs.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type EmailSender struct {
	sender string
	client SESClient
}

// NewEmailSender builds an SES client. Static credentials are used when both
// keys are configured, the default AWS chain otherwise.
func NewEmailSender(ctx context.Context, cfg config.EmailConfig) (*EmailSender, error) {
	if cfg.SenderEmail == "" {
		return nil, errors.New("sender email address is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return NewEmailSenderWithClient(cfg.SenderEmail, ses.NewFromConfig(awsCfg)), nil
}

func NewEmailSenderWithClient(sender string, client SESClient) *EmailSender {
	return &EmailSender{sender: sender, client: client}
}

func (s *EmailSender) Channel() string { return "email" }

func (s *EmailSender) Send(ctx context.Context, conf OrderConfirmation) error {
	if conf.Email == "" {
		return errors.New("recipient email address is empty")
	}

	subject := fmt.Sprintf("Your order #%d is confirmed", conf.OrderID)
	html, text := emailBodies(conf)

	input := &ses.SendEmailInput{
		Source:      aws.String(s.sender),
		Destination: &types.Destination{ToAddresses: []string{conf.Email}},
		Message: &types.Message{
			Subject: utf8Content(subject),
			Body:    &types.Body{Html: utf8Content(html), Text: utf8Content(text)},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func utf8Content(data string) *types.Content {
	return &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(data)}
}

// emailBodies renders the confirmation as HTML and plain text with one line
// per product.
func emailBodies(conf OrderConfirmation) (string, string) {
	var html, text strings.Builder

	fmt.Fprintf(&html, "<p>Hi %s,</p>\n<p>We have received order #%d placed on %s.</p>\n<ul>\n",
		htmlpkg.EscapeString(conf.CustomerName), conf.OrderID, conf.OrderDate)
	fmt.Fprintf(&text, "Hi %s,\n\nWe have received order #%d placed on %s.\n\n", conf.CustomerName, conf.OrderID, conf.OrderDate)

	for _, item := range conf.Items {
		price := strconv.FormatFloat(item.Price, 'f', 2, 64)
		fmt.Fprintf(&html, "<li>%s: KES %s</li>\n", htmlpkg.EscapeString(item.Name), price)
		fmt.Fprintf(&text, "- %s: KES %s\n", item.Name, price)
	}

	total := strconv.FormatFloat(conf.Total, 'f', 2, 64)
	fmt.Fprintf(&html, "</ul>\n<p><strong>Total: KES %s</strong></p>\n", total)
	fmt.Fprintf(&text, "\nTotal: KES %s\n", total)

	if conf.ExpectedDelivery != "" {
		fmt.Fprintf(&html, "<p>Expected delivery: %s</p>\n", conf.ExpectedDelivery)
		fmt.Fprintf(&text, "Expected delivery: %s\n", conf.ExpectedDelivery)
	}
	return "<html><body>\n" + html.String() + "</body></html>", text.String()
}
