package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/garageleadly/go-leads-backend/internal/domain"
)

type fakeCreator struct {
	err  error
	last *twilioapi.CreateMessageParams
}

func (f *fakeCreator) CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error) {
	f.last = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioapi.ApiV2010Message{Sid: &sid}, nil
}

func sampleLead() *domain.Lead {
	return &domain.Lead{
		Name:    "Jane Homeowner",
		Phone:   "+18325550142",
		Email:   "jane@example.com",
		Address: "42 Oak Ln",
		City:    "Houston",
		County:  "Harris",
		ZIP:     "77002",
		Issue:   "Door stuck halfway",
		JobType: domain.JobTypeResidential,
	}
}

func TestLeadMessage_IncludesContactAndJobDetails(t *testing.T) {
	msg := LeadMessage(sampleLead())

	for _, want := range []string{
		"NEW LEAD - GarageLeadly",
		"Name: Jane Homeowner",
		"Phone: +18325550142",
		"County: Harris",
		"Type: residential",
		"Issue: Door stuck halfway",
		"within 10 minutes",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestNotifyLead_SendsToContractorPhone(t *testing.T) {
	fc := &fakeCreator{}
	n := &TwilioNotifier{client: fc, messagingServiceSID: "MG123"}
	c := &domain.Contractor{Phone: "+15125550100"}

	if err := n.NotifyLead(context.Background(), c, sampleLead()); err != nil {
		t.Fatalf("NotifyLead: %v", err)
	}
	if fc.last == nil || fc.last.To == nil || *fc.last.To != c.Phone {
		t.Fatalf("message not addressed to contractor: %+v", fc.last)
	}
	if fc.last.MessagingServiceSid == nil || *fc.last.MessagingServiceSid != "MG123" {
		t.Fatalf("messaging service not set")
	}
	if fc.last.Body == nil || !strings.Contains(*fc.last.Body, "NEW LEAD") {
		t.Fatalf("body not rendered")
	}
}

func TestNotifyLead_PropagatesTransportError(t *testing.T) {
	fc := &fakeCreator{err: errors.New("twilio 500")}
	n := &TwilioNotifier{client: fc, messagingServiceSID: "MG123"}

	err := n.NotifyLead(context.Background(), &domain.Contractor{Phone: "+15125550100"}, sampleLead())
	if err == nil || err.Error() != "twilio 500" {
		t.Fatalf("expected transport error, got %v", err)
	}
}
