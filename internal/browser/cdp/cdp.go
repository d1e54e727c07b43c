// Package cdp adapts a live Chrome instance, reached over the DevTools
// protocol via rod, to the browser package contracts. Chrome must run with
// remote debugging enabled; tab groups are not reachable over plain CDP
// and report UNSUPPORTED.
package cdp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"

	"github.com/hpungsan/tabstash/internal/browser"
	"github.com/hpungsan/tabstash/internal/errors"
)

// Browser is a TabDirectory and Messenger over one Chrome connection.
type Browser struct {
	b   *rod.Browser
	log *logrus.Logger
}

// Connect attaches to Chrome at the given DevTools websocket URL.
func Connect(controlURL string, log *logrus.Logger) (*Browser, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser at %s: %w", controlURL, err)
	}
	log.WithField("control_url", controlURL).Info("attached to browser")
	return &Browser{b: b, log: log}, nil
}

// Disconnect detaches from Chrome without closing it.
func (c *Browser) Disconnect() error {
	return c.b.Close()
}

// Tabs implements browser.TabDirectory.
func (c *Browser) Tabs(ctx context.Context) ([]browser.Tab, error) {
	pages, err := c.b.Pages()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	out := make([]browser.Tab, 0, len(pages))
	for _, p := range pages {
		info, err := p.Info()
		if err != nil || info.Type != "page" {
			continue
		}
		out = append(out, browser.Tab{
			ID:     string(info.TargetID),
			URL:    info.URL,
			Title:  info.Title,
			Active: c.isVisible(ctx, p),
			// Pinned state and group membership are extension-API
			// concepts; CDP does not expose them.
			GroupID: browser.NoGroup,
		})
	}
	return out, nil
}

// isVisible reports whether the page is the visible one in its window.
func (c *Browser) isVisible(ctx context.Context, p *rod.Page) bool {
	res, err := p.Context(ctx).Eval(`() => document.visibilityState`)
	return err == nil && res.Value.Str() == "visible"
}

// Activate implements browser.TabDirectory.
func (c *Browser) Activate(ctx context.Context, tabID string) error {
	p, err := c.page(tabID)
	if err != nil {
		return err
	}
	if _, err := p.Context(ctx).Activate(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Close implements browser.TabDirectory.
func (c *Browser) Close(ctx context.Context, tabID string) error {
	p, err := c.page(tabID)
	if err != nil {
		return err
	}
	if err := p.Context(ctx).Close(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Open implements browser.TabDirectory.
func (c *Browser) Open(ctx context.Context, url string) (browser.Tab, error) {
	p, err := c.b.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return browser.Tab{}, errors.NewInternal(err)
	}
	info, err := p.Info()
	if err != nil {
		return browser.Tab{}, errors.NewInternal(err)
	}
	return browser.Tab{ID: string(info.TargetID), URL: info.URL, Title: info.Title}, nil
}

// Groups implements browser.TabDirectory.
func (c *Browser) Groups(ctx context.Context) ([]browser.Group, error) {
	return nil, errors.NewUnsupported("tab groups")
}

// CreateGroup implements browser.TabDirectory.
func (c *Browser) CreateGroup(ctx context.Context, title, color string, tabIDs []string) (browser.Group, error) {
	return browser.Group{}, errors.NewUnsupported("tab groups")
}

// AddToGroup implements browser.TabDirectory.
func (c *Browser) AddToGroup(ctx context.Context, groupID string, tabIDs []string) error {
	return errors.NewUnsupported("tab groups")
}

func (c *Browser) page(tabID string) (*rod.Page, error) {
	p, err := c.b.PageFromTarget(proto.TargetTargetID(tabID))
	if err != nil {
		return nil, errors.NewNotFound(tabID)
	}
	return p, nil
}

// overlayBootstrapJS installs the page-side message listener. Overlays are
// minimal on purpose: a fixed-position box that shows the message action
// and payload, auto-dismissed after a few seconds.
const overlayBootstrapJS = `() => {
	if (window.__tabstashReceive) return;
	window.__tabstashReceive = (msg) => {
		const el = document.createElement('div');
		el.style.cssText = 'position:fixed;top:12px;right:12px;z-index:2147483647;' +
			'background:#1f2430;color:#fff;padding:10px 14px;border-radius:6px;' +
			'font:13px/1.4 system-ui;box-shadow:0 4px 16px rgba(0,0,0,.3)';
		el.textContent = (msg.payload && msg.payload.text) || msg.action;
		document.body.appendChild(el);
		setTimeout(() => el.remove(), 4000);
	};
}`

// Send implements browser.Messenger. It fails when the page listener is
// not installed so the caller's retry policy can kick in.
func (c *Browser) Send(ctx context.Context, tabID string, msg browser.Message) error {
	p, err := c.page(tabID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.NewInternal(err)
	}
	res, err := p.Context(ctx).Eval(
		`(m) => { if (!window.__tabstashReceive) return false; window.__tabstashReceive(m); return true; }`,
		json.RawMessage(payload),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	if !res.Value.Bool() {
		return fmt.Errorf("page listener not installed in %s", tabID)
	}
	return nil
}

// Inject implements browser.Messenger.
func (c *Browser) Inject(ctx context.Context, tabID string) error {
	p, err := c.page(tabID)
	if err != nil {
		return err
	}
	if _, err := p.Context(ctx).Eval(overlayBootstrapJS); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
