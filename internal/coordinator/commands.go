package coordinator

import (
	"context"

	"github.com/hpungsan/tabstash/internal/browser"
	"github.com/hpungsan/tabstash/internal/errors"
)

// Named user commands (keyboard shortcuts and equivalents).
const (
	CommandTriage      = "triage"
	CommandAssignGroup = "assign-group"
	CommandScratchpad  = "scratchpad"
	CommandAnnotate    = "annotate"
)

var commandActions = map[string]string{
	CommandTriage:      ActionShowTriage,
	CommandAssignGroup: ActionShowGroupPicker,
	CommandScratchpad:  ActionShowScratchpad,
	CommandAnnotate:    ActionShowAnnotate,
}

// HandleCommand pushes the overlay for a named command to the active tab's
// page context. There is nowhere to show an overlay without an active tab,
// so that case is a silent no-op rather than an error.
func (c *Coordinator) HandleCommand(ctx context.Context, command string) (Delivery, error) {
	action, ok := commandActions[command]
	if !ok {
		return Dropped, errors.NewInvalidRequest("unknown command: " + command)
	}

	open, err := c.tabs.Tabs(ctx)
	if err != nil {
		return Dropped, err
	}
	for _, t := range open {
		if t.Active {
			return c.notify(ctx, t.ID, browser.Message{Action: action}), nil
		}
	}
	c.log.WithField("command", command).Debug("command ignored: no active tab")
	return Dropped, nil
}
