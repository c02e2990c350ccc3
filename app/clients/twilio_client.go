package client

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioClient sends the portal's SMS notices (deposit confirmed, credit
// completed). Sends are best-effort: failures are logged, never propagated
// into the ledger mutation that triggered them.
type TwilioClient struct {
	Client *twilio.RestClient
	L      *logrus.Logger
	number string
}

func NewTwilioClient(l *logrus.Logger) *TwilioClient {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	twilioNumber := os.Getenv("TWILIO_PHONE_NUMBER")
	return &TwilioClient{
		Client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		L:      l,
		number: twilioNumber,
	}
}

func (t *TwilioClient) SendSMS(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.number)
	params.SetBody(body)

	if _, err := t.Client.Api.CreateMessage(params); err != nil {
		t.L.Errorf("Error sending SMS: %s", err.Error())
		return err
	}
	return nil
}
