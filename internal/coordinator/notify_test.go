package coordinator

import (
	"context"
	"testing"

	"github.com/hpungsan/tabstash/internal/browser"
	"github.com/hpungsan/tabstash/internal/errors"
)

func TestNotify_Delivered(t *testing.T) {
	f := newFixture(t)

	got := f.coord.Notify(context.Background(), "t1", browser.Message{Action: ActionShowToast})
	if got != Delivered {
		t.Errorf("Delivery = %q, want %q", got, Delivered)
	}
	if len(f.messenger.Injected) != 0 {
		t.Error("successful send should not inject")
	}
}

func TestNotify_RecoversAfterInject(t *testing.T) {
	f := newFixture(t)
	f.messenger.FailFirst = 1

	got := f.coord.Notify(context.Background(), "t1", browser.Message{Action: ActionShowBanner})
	if got != Recovered {
		t.Errorf("Delivery = %q, want %q", got, Recovered)
	}
	if len(f.messenger.Injected) != 1 {
		t.Errorf("Injected = %v, want one injection", f.messenger.Injected)
	}
	if len(f.messenger.Sent) != 1 {
		t.Errorf("Sent = %d, want the resent message only", len(f.messenger.Sent))
	}
}

func TestNotify_DroppedAfterSecondFailure(t *testing.T) {
	f := newFixture(t)
	f.messenger.FailFirst = 2

	got := f.coord.Notify(context.Background(), "t1", browser.Message{Action: ActionShowBanner})
	if got != Dropped {
		t.Errorf("Delivery = %q, want %q", got, Dropped)
	}
	if len(f.messenger.Sent) != 0 {
		t.Errorf("Sent = %d, want 0", len(f.messenger.Sent))
	}
}

func TestHandleCommand(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tab := f.tabs.Add("https://example.com", "Example")
	if err := f.tabs.Activate(ctx, tab.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	cases := map[string]string{
		CommandTriage:      ActionShowTriage,
		CommandAssignGroup: ActionShowGroupPicker,
		CommandScratchpad:  ActionShowScratchpad,
		CommandAnnotate:    ActionShowAnnotate,
	}
	for cmd, action := range cases {
		f.messenger.Sent = nil
		d, err := f.coord.HandleCommand(ctx, cmd)
		if err != nil {
			t.Fatalf("HandleCommand(%q) failed: %v", cmd, err)
		}
		if d != Delivered {
			t.Errorf("HandleCommand(%q) delivery = %q", cmd, d)
		}
		if len(f.messenger.Sent) != 1 || f.messenger.Sent[0].Message.Action != action {
			t.Errorf("HandleCommand(%q) sent %+v, want %q", cmd, f.messenger.Sent, action)
		}
		if f.messenger.Sent[0].TabID != tab.ID {
			t.Errorf("overlay went to %q, want active tab", f.messenger.Sent[0].TabID)
		}
	}
}

func TestHandleCommand_Unknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.HandleCommand(context.Background(), "self-destruct")
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("want ErrInvalidRequest, got %v", err)
	}
}

func TestHandleCommand_NoActiveTab(t *testing.T) {
	f := newFixture(t)
	f.tabs.Add("https://example.com", "inactive")

	d, err := f.coord.HandleCommand(context.Background(), CommandTriage)
	if err != nil {
		t.Fatalf("HandleCommand failed: %v", err)
	}
	if d != Dropped {
		t.Errorf("delivery = %q, want %q with no active tab", d, Dropped)
	}
	if len(f.messenger.Sent) != 0 {
		t.Error("overlay sent with no active tab")
	}
}
