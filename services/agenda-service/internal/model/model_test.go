package model

import (
	"errors"
	"testing"
)

func TestTransitionContact(t *testing.T) {
	tr := Transition{CustomerPhone: " +5511 ", CustomerEmail: "x@example.com"}
	if ch, to := tr.Contact(); ch != ChannelSMS || to != "+5511" {
		t.Fatalf("expected sms, got %s %q", ch, to)
	}
	tr.CustomerPhone = ""
	if ch, to := tr.Contact(); ch != ChannelEmail || to != "x@example.com" {
		t.Fatalf("expected email, got %s %q", ch, to)
	}
	tr.CustomerEmail = ""
	if ch, _ := tr.Contact(); ch != ChannelNone {
		t.Fatalf("expected no channel, got %s", ch)
	}
}

func TestRemoteError(t *testing.T) {
	cause := errors.New("conflict")
	err := error(&RemoteError{Message: "slot taken", Err: cause})
	if err.Error() != "slot taken: conflict" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	var re *RemoteError
	if !errors.As(err, &re) || !errors.Is(err, cause) {
		t.Fatal("expected RemoteError to wrap its cause")
	}
	if (&RemoteError{}).Error() == "" {
		t.Fatal("empty RemoteError should still describe itself")
	}
}

func TestStatusValid(t *testing.T) {
	if !StatusDepositPaid.Valid() || Status("booked").Valid() {
		t.Fatal("status validation mismatch")
	}
}
