package coordinator

import (
	"context"

	"github.com/hpungsan/tabstash/internal/browser"
)

// Page-overlay message actions.
const (
	ActionShowBanner      = "showBanner"
	ActionShowToast       = "showToast"
	ActionShowTriage      = "showTriage"
	ActionShowGroupPicker = "showGroupPicker"
	ActionShowScratchpad  = "showScratchpad"
	ActionShowAnnotate    = "showAnnotate"
)

// Delivery is the outcome of one notification attempt.
type Delivery string

const (
	Delivered Delivery = "delivered" // first send succeeded
	Recovered Delivery = "recovered" // succeeded after re-injecting the listener
	Dropped   Delivery = "dropped"   // both attempts failed; message discarded
)

// notify delivers a message to the tab's page. The page listener may not
// be installed yet (fresh tab, navigation mid-flight), so a failed send
// re-injects it and resends exactly once. Delivery is advisory; callers of
// the event pipelines never fail on a dropped overlay.
func (c *Coordinator) notify(ctx context.Context, tabID string, msg browser.Message) Delivery {
	if err := c.messenger.Send(ctx, tabID, msg); err == nil {
		return Delivered
	}

	if err := c.messenger.Inject(ctx, tabID); err != nil {
		c.log.WithField("tab", tabID).WithField("action", msg.Action).
			Debug("notification dropped: inject failed")
		return Dropped
	}
	if err := c.messenger.Send(ctx, tabID, msg); err != nil {
		c.log.WithField("tab", tabID).WithField("action", msg.Action).
			Debug("notification dropped: resend failed")
		return Dropped
	}
	return Recovered
}

// Notify exposes the delivery policy to boundary surfaces that push
// overlays directly (the command dispatcher, the API layer).
func (c *Coordinator) Notify(ctx context.Context, tabID string, msg browser.Message) Delivery {
	return c.notify(ctx, tabID, msg)
}
