// Package notify implements the contractor notification transport over
// Twilio SMS. Delivery is fire-and-forget from the intake pipeline's
// perspective: the result is logged and counted, never propagated to the
// submitter.
package notify

import (
	"context"

	twilio "github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/garageleadly/go-leads-backend/internal/domain"
)

// messageCreator is the slice of the Twilio REST client the sender needs;
// tests substitute a fake.
type messageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// TwilioNotifier sends new-lead text messages through a Twilio messaging
// service.
type TwilioNotifier struct {
	client              messageCreator
	messagingServiceSID string
}

// NewTwilioNotifier constructs a notifier from account credentials and the
// messaging service to send from.
func NewTwilioNotifier(accountSID, authToken, messagingServiceSID string) *TwilioNotifier {
	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioNotifier{client: rc.Api, messagingServiceSID: messagingServiceSID}
}

// NotifyLead formats and sends the lead summary SMS to the contractor's
// phone. The context is accepted for interface symmetry; the Twilio REST
// client manages its own request lifecycle.
func (n *TwilioNotifier) NotifyLead(_ context.Context, c *domain.Contractor, l *domain.Lead) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(c.Phone)
	params.SetMessagingServiceSid(n.messagingServiceSID)
	params.SetBody(LeadMessage(l))

	_, err := n.client.CreateMessage(params)
	return err
}
