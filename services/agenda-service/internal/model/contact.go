package model

import "strings"

type Channel string

const (
	ChannelNone  Channel = ""
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// Contact picks the channel a reschedule notice goes out on: phone first, then email.
func (t Transition) Contact() (Channel, string) {
	if p := strings.TrimSpace(t.CustomerPhone); p != "" {
		return ChannelSMS, p
	}
	if e := strings.TrimSpace(t.CustomerEmail); e != "" {
		return ChannelEmail, e
	}
	return ChannelNone, ""
}
