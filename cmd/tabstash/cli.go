package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/tabstash/internal/api"
	"github.com/hpungsan/tabstash/internal/bookmarks"
	"github.com/hpungsan/tabstash/internal/browser"
	"github.com/hpungsan/tabstash/internal/browser/cdp"
	"github.com/hpungsan/tabstash/internal/capture"
	"github.com/hpungsan/tabstash/internal/config"
	"github.com/hpungsan/tabstash/internal/coordinator"
	"github.com/hpungsan/tabstash/internal/errors"
	"github.com/hpungsan/tabstash/internal/kv"
	"github.com/hpungsan/tabstash/internal/settings"
	"github.com/hpungsan/tabstash/internal/web"
)

// env holds the wired collaborators every command shares. When no Chrome
// control URL is configured the browser-facing operations answer NO_BROWSER
// through the Disconnected stand-ins.
type env struct {
	cfg      *config.Config
	baseDir  string
	log      *logrus.Logger
	captures *capture.Store
	settings *settings.Store
	coord    *coordinator.Coordinator
	d        *api.Dispatcher
	attached *cdp.Browser
}

func newEnv(store kv.Store, cfg *config.Config, baseDir string) *env {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if os.Getenv("TABSTASH_DEBUG") != "" {
		log.SetLevel(logrus.DebugLevel)
	}

	var (
		tabs      browser.TabDirectory = browser.Disconnected{}
		messenger browser.Messenger    = browser.Disconnected{}
		attached  *cdp.Browser
	)
	if cfg.ControlURL != "" {
		b, err := cdp.Connect(cfg.ControlURL, log)
		if err != nil {
			log.WithError(err).Warn("browser unreachable, running detached")
		} else {
			tabs, messenger, attached = b, b, b
		}
	}

	marks := bookmarks.NewKVDirectory(store)
	cache := bookmarks.NewCache(marks)
	if err := cache.Rebuild(context.Background()); err != nil {
		log.WithError(err).Warn("bookmark index rebuild failed")
	}
	caps := capture.NewStore(store)
	cfgStore := settings.NewStore(store)
	cfgStore.OnSave = func(s settings.Settings) {
		log.WithField("enabled", s.Enabled).Info("settings saved")
	}

	coord := coordinator.New(coordinator.Deps{
		Tabs:      tabs,
		Messenger: messenger,
		Bookmarks: cache,
		Settings:  cfgStore,
		Captures:  caps,
		Log:       log,
	})

	d := api.NewDispatcher(api.Deps{
		Captures:  caps,
		Settings:  cfgStore,
		Coord:     coord,
		Tabs:      tabs,
		Bookmarks: marks,
		Cache:     cache,
		BaseDir:   baseDir,
		Log:       log,
	})

	return &env{
		cfg:      cfg,
		baseDir:  baseDir,
		log:      log,
		captures: caps,
		settings: cfgStore,
		coord:    coord,
		d:        d,
		attached: attached,
	}
}

func (e *env) dispatcher() *api.Dispatcher { return e.d }

func (e *env) close() {
	if e.attached != nil {
		e.attached.Disconnect()
	}
}

// dispatch runs one action through the shared dispatcher and prints the
// result as JSON, matching what the MCP and HTTP surfaces return.
func (e *env) dispatch(action string, args map[string]any) error {
	out, err := e.d.Dispatch(context.Background(), action, args)
	if err != nil {
		return outputError(err)
	}
	return outputJSON(out)
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "tabstash",
		Usage:   "Browser tab capture companion",
		Version: Version,
		Commands: []*cli.Command{
			saveCmd(e),
			inboxCmd(e),
			noteCmd(e),
			annotateCmd(e),
			listCmd(e),
			searchCmd(e),
			metricsCmd(e),
			bookmarksCmd(e),
			deleteCmd(e),
			deleteBookmarkCmd(e),
			clearCmd(e),
			commandCmd(e),
			settingsCmd(e),
			exportCmd(e),
			autoGroupCmd(e),
			openNextCmd(e),
			closeBookmarkedCmd(e),
			serveCmd(e),
			watchCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// saveCmd creates the save command.
func saveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Save a URL as a triaged capture",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"T"}, Value: "reference", Usage: "Capture list: next|reference|someday"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Page title"},
			&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "Note attached to the capture"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("url argument is required"))
			}
			return e.dispatch("save_capture", map[string]any{
				"url":   c.Args().First(),
				"title": c.String("title"),
				"note":  c.String("note"),
				"type":  c.String("type"),
			})
		},
	}
}

// inboxCmd creates the inbox command.
func inboxCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "inbox",
		Usage:     "Save a URL to the uncategorized inbox",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Page title"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("url argument is required"))
			}
			return e.dispatch("save_uncategorized", map[string]any{
				"url":   c.Args().First(),
				"title": c.String("title"),
			})
		},
	}
}

// noteCmd creates the note command.
func noteCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "note",
		Usage:     "Replace the scratchpad text (argument or piped stdin)",
		ArgsUsage: "[text]",
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if text == "" && stdinHasData() {
				piped, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				text = piped
			}
			return e.dispatch("save_scratchpad", map[string]any{"text": text})
		},
	}
}

// annotateCmd creates the annotate command.
func annotateCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "annotate",
		Usage:     "Attach a note and keywords to a URL's activity record",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "Note text"},
			&cli.StringFlag{Name: "keywords", Aliases: []string{"k"}, Usage: "Comma-separated keywords"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Page title"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("url argument is required"))
			}
			args := map[string]any{
				"url":   c.Args().First(),
				"title": c.String("title"),
				"note":  c.String("note"),
			}
			if kw := c.String("keywords"); kw != "" {
				args["keywords"] = parseList(kw)
			}
			return e.dispatch("save_annotation", args)
		},
	}
}

// listCmd creates the list command.
func listCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Show all captures, the inbox, and the scratchpad",
		Action: func(c *cli.Context) error {
			return e.dispatch("get_data", nil)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search captures, the inbox, and browsing activity",
		ArgsUsage: "<query>",
		Action: func(c *cli.Context) error {
			return e.dispatch("search", map[string]any{
				"query": strings.Join(c.Args().Slice(), " "),
			})
		},
	}
}

// metricsCmd creates the metrics command.
func metricsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "metrics",
		Usage: "Show the most engaged pages by visit count and time spent",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum rows to return"},
		},
		Action: func(c *cli.Context) error {
			return e.dispatch("get_metrics", map[string]any{
				"limit": c.Int("limit"),
			})
		},
	}
}

// bookmarksCmd creates the bookmarks command.
func bookmarksCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "bookmarks",
		Usage: "List bookmarks joined with their activity annotations",
		Action: func(c *cli.Context) error {
			return e.dispatch("get_bookmarks", nil)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete one item from a capture list",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "list", Aliases: []string{"l"}, Required: true, Usage: "List: captures|uncategorized|scratchpad"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}
			return e.dispatch("delete_item", map[string]any{
				"list": c.String("list"),
				"id":   c.Args().First(),
			})
		},
	}
}

// deleteBookmarkCmd creates the delete-bookmark command.
func deleteBookmarkCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "delete-bookmark",
		Usage:     "Delete a bookmark by ID",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("id argument is required"))
			}
			return e.dispatch("delete_bookmark", map[string]any{
				"id": c.Args().First(),
			})
		},
	}
}

// commandCmd creates the command command.
func commandCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "command",
		Usage:     "Show a command overlay in the active tab (needs an attached browser)",
		ArgsUsage: "<triage|assign-group|scratchpad|annotate>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("command argument is required"))
			}
			return e.dispatch("command", map[string]any{
				"command": c.Args().First(),
			})
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Clear whole data categories",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "categories", Aliases: []string{"c"}, Required: true, Usage: "Comma-separated: captures|uncategorized|scratchpad|metrics"},
		},
		Action: func(c *cli.Context) error {
			return e.dispatch("clear_data", map[string]any{
				"categories": parseList(c.String("categories")),
			})
		},
	}
}

// settingsCmd creates the settings command.
func settingsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show settings, or update them from piped JSON",
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return e.dispatch("get_settings", nil)
			}
			text, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			var args map[string]any
			if err := json.Unmarshal([]byte(text), &args); err != nil {
				return outputError(errors.NewInvalidRequest("settings must be a JSON object"))
			}
			return e.dispatch("save_settings", args)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all data to a markdown file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: <base>/exports/tabstash-<date>.md)"},
		},
		Action: func(c *cli.Context) error {
			return e.dispatch("export", map[string]any{
				"path": c.String("path"),
			})
		},
	}
}

// autoGroupCmd creates the auto-group command.
func autoGroupCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "auto-group",
		Usage: "Group open tabs by registrable domain (needs an attached browser)",
		Action: func(c *cli.Context) error {
			return e.dispatch("auto_group", nil)
		},
	}
}

// openNextCmd creates the open-next command.
func openNextCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "open-next",
		Usage: "Open all Next Actions captures in a tab group (needs an attached browser)",
		Action: func(c *cli.Context) error {
			return e.dispatch("open_next_group", nil)
		},
	}
}

// closeBookmarkedCmd creates the close-bookmarked command.
func closeBookmarkedCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "close-bookmarked",
		Usage: "Close every open tab whose URL is bookmarked (needs an attached browser)",
		Action: func(c *cli.Context) error {
			return e.dispatch("close_bookmarked", nil)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (overrides config)"},
			&cli.IntFlag{Name: "port", Usage: "Port (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			bind, port := e.cfg.WebBind, e.cfg.WebPort
			if v := c.String("bind"); v != "" {
				bind = v
			}
			if v := c.Int("port"); v != 0 {
				port = v
			}
			srv := web.NewServer(e.d, e.captures, Version, bind, port)
			e.log.WithField("addr", srv.Addr).Info("serving http")
			return web.Run(srv)
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Follow tab activity in the attached browser until interrupted",
		Action: func(c *cli.Context) error {
			if e.attached == nil {
				return outputError(errors.NewNoBrowser())
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			e.log.Info("watching tab activity")
			for ev := range e.attached.Watch(ctx) {
				if err := e.coord.Dispatch(ctx, ev); err != nil {
					e.log.WithField("kind", ev.Kind).WithError(err).Debug("event pipeline failed")
				}
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if sErr, ok := err.(*errors.StashError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseList splits a comma-separated string into trimmed parts.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
