package notifier

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/Keoroanthony/go-ecommerce-api/configs"
)

var confirmation = OrderConfirmation{
	OrderID:          42,
	CustomerName:     "Wanjiru & Sons",
	Email:            "wanjiru@example.com",
	Phone:            "+254700000000",
	OrderDate:        "2024-05-01",
	ExpectedDelivery: "2024-05-08",
	Items: []LineItem{
		{Name: "Kettle", Price: 1000},
		{Name: "Mug", Price: 500.5},
	},
	Total: 1500.5,
}

func TestSMSSender(t *testing.T) {
	t.Run("posts the confirmation", func(t *testing.T) {
		var got url.Values
		var apiKey string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, r.ParseForm())
			got = r.PostForm
			apiKey = r.Header.Get("apikey")
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"SMSMessageData":{"Message":"Sent to 1/1","Recipients":[{"statusCode":101,"number":"+254700000000","status":"Success"}]}}`)
		}))
		defer srv.Close()

		s := NewSMSSender(config.AfricaTalkingConfig{Username: "sandbox", APIKey: "key", SMSURL: srv.URL, SenderID: "SHOP"}, srv.Client())
		require.NoError(t, s.Send(context.Background(), confirmation))

		assert.Equal(t, "key", apiKey)
		assert.Equal(t, "sandbox", got.Get("username"))
		assert.Equal(t, "+254700000000", got.Get("to"))
		assert.Equal(t, "SHOP", got.Get("from"))
		assert.Equal(t, "Order #42 confirmed: 2 item(s), total KES 1500.50. Expected delivery 2024-05-08.", got.Get("message"))
	})

	t.Run("reports api errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"SMSMessageData":{"Message":"InvalidCredentials"}}`)
		}))
		defer srv.Close()

		s := NewSMSSender(config.AfricaTalkingConfig{SMSURL: srv.URL}, srv.Client())
		err := s.Send(context.Background(), confirmation)
		assert.ErrorContains(t, err, "401")
		assert.ErrorContains(t, err, "InvalidCredentials")
	})

	t.Run("needs a phone number", func(t *testing.T) {
		s := NewSMSSender(config.AfricaTalkingConfig{}, nil)
		assert.Error(t, s.Send(context.Background(), OrderConfirmation{OrderID: 1}))
	})
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestEmailSender(t *testing.T) {
	t.Run("sends through ses", func(t *testing.T) {
		client := &fakeSES{}
		s := NewEmailSenderWithClient("shop@example.com", client)

		require.NoError(t, s.Send(context.Background(), confirmation))
		require.NotNil(t, client.input)
		assert.Equal(t, "shop@example.com", aws.ToString(client.input.Source))
		assert.Equal(t, []string{"wanjiru@example.com"}, client.input.Destination.ToAddresses)
		assert.Equal(t, "Your order #42 is confirmed", aws.ToString(client.input.Message.Subject.Data))

		text := aws.ToString(client.input.Message.Body.Text.Data)
		assert.Contains(t, text, "- Kettle: KES 1000.00\n- Mug: KES 500.50\n")
		assert.Contains(t, text, "Total: KES 1500.50")
		assert.Contains(t, text, "Expected delivery: 2024-05-08")

		html := aws.ToString(client.input.Message.Body.Html.Data)
		assert.Contains(t, html, "Hi Wanjiru &amp; Sons,")
		assert.Contains(t, html, "<li>Mug: KES 500.50</li>")
	})

	t.Run("wraps ses failures", func(t *testing.T) {
		s := NewEmailSenderWithClient("shop@example.com", &fakeSES{err: errors.New("throttled")})
		assert.ErrorContains(t, s.Send(context.Background(), confirmation), "throttled")
	})

	t.Run("needs a recipient", func(t *testing.T) {
		s := NewEmailSenderWithClient("shop@example.com", &fakeSES{})
		assert.Error(t, s.Send(context.Background(), OrderConfirmation{OrderID: 1}))
	})

	t.Run("needs a sender", func(t *testing.T) {
		_, err := NewEmailSender(context.Background(), config.EmailConfig{})
		assert.Error(t, err)
	})
}

type stubSender struct {
	channel string
	err     error
	sent    []OrderConfirmation
}

func (s *stubSender) Channel() string { return s.channel }

func (s *stubSender) Send(ctx context.Context, conf OrderConfirmation) error {
	s.sent = append(s.sent, conf)
	return s.err
}

func TestDispatcher(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	failing := &stubSender{channel: "sms", err: errors.New("gateway down")}
	working := &stubSender{channel: "email"}

	d := NewDispatcher(log, failing, working)
	d.NotifyOrderPlaced(context.Background(), confirmation)

	assert.Len(t, failing.sent, 1)
	assert.Len(t, working.sent, 1, "a failing channel does not stop the others")
	assert.Contains(t, buf.String(), "gateway down")
	assert.Equal(t, []string{"sms", "email"}, d.Channels())
}

func TestFromConfig(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	d, err := FromConfig(context.Background(), config.Config{}, log)
	require.NoError(t, err)
	assert.Empty(t, d.Channels())

	d, err = FromConfig(context.Background(), config.Config{
		AfricaTalking: config.AfricaTalkingConfig{Username: "sandbox", APIKey: "key"},
	}, log)
	require.NoError(t, err)
	assert.Equal(t, []string{"sms"}, d.Channels())
}
