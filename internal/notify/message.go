package notify

import (
	"fmt"
	"strings"

	"github.com/garageleadly/go-leads-backend/internal/domain"
)

// LeadMessage renders the SMS body sent to a contractor for a new lead:
// contact details, job location, and the issue, with a call-to-action. The
// ten-minute callback promise is part of the product pitch to homeowners.
func LeadMessage(l *domain.Lead) string {
	var b strings.Builder
	b.WriteString("🔧 NEW LEAD - GarageLeadly\n\n")
	fmt.Fprintf(&b, "Name: %s\nPhone: %s\nEmail: %s\n\n", l.Name, l.Phone, l.Email)
	fmt.Fprintf(&b, "Address: %s\nCity: %s\nCounty: %s\nZIP: %s\n\n", l.Address, l.City, l.County, l.ZIP)
	fmt.Fprintf(&b, "Type: %s\nIssue: %s\n\n", l.JobType, l.Issue)
	b.WriteString("CALL NOW - They're expecting your call within 10 minutes!")
	return b.String()
}
