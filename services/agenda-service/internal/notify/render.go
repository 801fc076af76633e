// Package notify delivers reschedule notices to customers over SMS or email.
package notify

import (
	"fmt"
	"strings"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/commit"
)

const rescheduleSubject = "Your appointment was rescheduled"

// RenderReschedule builds the customer-facing text for a reschedule notice.
func RenderReschedule(r commit.Reschedule) string {
	name := strings.TrimSpace(r.CustomerName)
	if name == "" {
		name = "there"
	}
	service := strings.TrimSpace(r.Service)
	if service == "" {
		return fmt.Sprintf("Hi %s, your appointment moved from %s to %s.", name, r.OldLabel, r.NewLabel)
	}
	return fmt.Sprintf("Hi %s, your %s appointment moved from %s to %s.", name, service, r.OldLabel, r.NewLabel)
}
