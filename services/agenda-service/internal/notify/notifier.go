package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/commit"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

// ErrChannelDisabled reports that no sender is configured for the notice's channel.
var ErrChannelDisabled = errors.New("notify: channel disabled")

// Router renders a reschedule notice and hands it to the sender for its channel. A nil
// sender fails with ErrChannelDisabled so the notice is never reported as delivered.
type Router struct {
	sms    SMSSender
	email  EmailSender
	logger *slog.Logger
}

func NewRouter(sms SMSSender, email EmailSender, logger *slog.Logger) *Router {
	return &Router{sms: sms, email: email, logger: logger}
}

func (r *Router) SendReschedule(ctx context.Context, n commit.Reschedule) error {
	body := RenderReschedule(n)
	switch n.Channel {
	case model.ChannelSMS:
		if r.sms == nil {
			r.logger.Info("sms disabled; reschedule notice dropped", "appointment_id", n.AppointmentID)
			return fmt.Errorf("%w: %s", ErrChannelDisabled, n.Channel)
		}
		if err := r.sms.Send(ctx, n.Recipient, body); err != nil {
			return fmt.Errorf("notify: %s: %w", r.sms.ProviderID(), err)
		}
	case model.ChannelEmail:
		if r.email == nil {
			r.logger.Info("email disabled; reschedule notice dropped", "appointment_id", n.AppointmentID)
			return fmt.Errorf("%w: %s", ErrChannelDisabled, n.Channel)
		}
		if err := r.email.Send(ctx, n.Recipient, rescheduleSubject, body); err != nil {
			return fmt.Errorf("notify: %s: %w", r.email.ProviderID(), err)
		}
	default:
		return fmt.Errorf("notify: unsupported channel %q", n.Channel)
	}
	r.logger.Info("reschedule notice sent", "appointment_id", n.AppointmentID, "channel", n.Channel)
	return nil
}
