package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/ops"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/scheduler"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/web"
)

// newCLIApp creates the CLI application with all commands. reg is served at
// /metrics by watch and serve; nil disables the endpoint.
func newCLIApp(svc *ops.Service, reg *prometheus.Registry) *cli.App {
	app := &cli.App{
		Name:    "cpa",
		Usage:   "Turn free-form notes into organized cards",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(svc),
			importCmd(svc),
			exportCmd(svc),
			envelopesCmd(svc),
			cardsCmd(svc),
			cardCmd(svc),
			analyzeCmd(svc),
			recommendationsCmd(svc),
			clearRecommendationsCmd(svc),
			suggestNameCmd(svc),
			contextCmd(svc),
			watchCmd(svc, reg),
			serveCmd(svc, reg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Ingest a note (from arguments, or stdin when none are given)",
		ArgsUsage: "[note...]",
		Action: func(c *cli.Context) error {
			note := strings.Join(c.Args().Slice(), " ")
			if note == "" {
				if !stdinHasData() {
					return outputError(errors.NewInvalidRequest("note must be given as arguments or piped via stdin"))
				}
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				note = text
			}

			output, err := svc.Process(c.Context, ops.ProcessInput{Note: note})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Ingest every note in a markdown or text file",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path is required"))
			}
			output, err := svc.ImportNotes(c.Context, ops.ImportNotesInput{Path: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export envelopes and cards to JSONL",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file path (default: exports/cpa-<timestamp>.jsonl)"},
			&cli.BoolFlag{Name: "recommendations", Aliases: []string{"r"}, Usage: "Include recommendations"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.Export(c.Context, ops.ExportInput{
				Path:                   c.String("path"),
				IncludeRecommendations: c.Bool("recommendations"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// envelopesCmd creates the envelopes command.
func envelopesCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "envelopes",
		Usage: "List envelopes, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.ListEnvelopes(c.Context, ops.ListEnvelopesInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// cardsCmd creates the cards command.
func cardsCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "cards",
		Usage: "List cards, optionally filtered",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "envelope", Aliases: []string{"e"}, Usage: "Envelope ID"},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "task|reminder|idea"},
			&cli.StringFlag{Name: "assignee", Aliases: []string{"a"}, Usage: "Assignee (case-insensitive)"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.ListCards(c.Context, ops.ListCardsInput{
				EnvelopeID: c.String("envelope"),
				Type:       c.String("type"),
				Assignee:   c.String("assignee"),
				Limit:      c.Int("limit"),
				Offset:     c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// cardCmd creates the card command.
func cardCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "card",
		Usage:     "Show one card and its envelope",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := svc.GetCard(c.Context, ops.GetCardInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// analyzeCmd creates the analyze command.
func analyzeCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Run the batch analyzer once and print its findings",
		Action: func(c *cli.Context) error {
			output, err := svc.Analyze(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// recommendationsCmd creates the recommendations command.
func recommendationsCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "recommendations",
		Usage: "List recent recommendations, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultRecommendationLimit, Usage: "Maximum items to return"},
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "duplicate|assignee_conflict|cluster_suggestion|suggestion"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.Recommendations(c.Context, ops.RecommendationsInput{
				Limit: c.Int("limit"),
				Kind:  c.String("kind"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// clearRecommendationsCmd creates the clear-recommendations command.
func clearRecommendationsCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "clear-recommendations",
		Usage: "Delete every stored recommendation",
		Action: func(c *cli.Context) error {
			output, err := svc.ClearRecommendations(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// suggestNameCmd creates the suggest-name command.
func suggestNameCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "suggest-name",
		Usage:     "Show the envelope name a text would get",
		ArgsUsage: "<text...>",
		Action: func(c *cli.Context) error {
			output, err := svc.SuggestName(c.Context, ops.SuggestNameInput{Text: strings.Join(c.Args().Slice(), " ")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// contextCmd creates the context command.
func contextCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "context",
		Usage: "Show project, people and theme counts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dimension", Aliases: []string{"d"}, Usage: "projects|people|themes"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum entries per dimension (0 = all)"},
		},
		Action: func(c *cli.Context) error {
			output, err := svc.ContextSnapshot(c.Context, ops.ContextInput{
				Dimension: c.String("dimension"),
				Limit:     c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// watchCmd creates the watch command: periodic analysis, optionally with
// the web UI and /metrics.
func watchCmd(svc *ops.Service, reg *prometheus.Registry) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Run the batch analyzer periodically until interrupted",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "interval", Aliases: []string{"i"}, Usage: "Time between runs (default: schedule_interval_secs)"},
			&cli.StringFlag{Name: "addr", Aliases: []string{"metrics-addr"}, Usage: "Also serve the web UI and /metrics on host:port"},
		},
		Action: func(c *cli.Context) error {
			interval := c.Duration("interval")
			if interval <= 0 {
				interval = time.Duration(svc.Config.ScheduleIntervalSecs) * time.Second
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			sched := scheduler.New(analysisJob(svc), interval, svc.Logger)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return sched.Run(gctx) })
			if addr := c.String("addr"); addr != "" {
				srv, err := web.NewServer(svc, web.Options{Version: Version, Addr: addr, Gatherer: gatherer(reg), Logger: svc.Logger})
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				g.Go(func() error { return web.Run(gctx, srv, svc.Logger) })
			}

			svc.Logger.Info("watching", "interval", interval)
			if err := g.Wait(); err != nil && !stderrors.Is(err, context.Canceled) {
				return outputError(err)
			}
			return nil
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(svc *ops.Service, reg *prometheus.Registry) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the web UI and /metrics until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Aliases: []string{"a"}, Value: "127.0.0.1:8765", Usage: "host:port to listen on"},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := web.NewServer(svc, web.Options{Version: Version, Addr: c.String("addr"), Gatherer: gatherer(reg), Logger: svc.Logger})
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if err := web.Run(ctx, srv, svc.Logger); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// analysisJob runs the analyzer and logs its summary.
func analysisJob(svc *ops.Service) scheduler.Job {
	return func(ctx context.Context) error {
		res, err := svc.Analyze(ctx)
		if err != nil {
			return err
		}
		svc.Logger.Info("scheduled analysis finished",
			"cards", res.Summary.NumCards,
			"duplicates", res.Summary.NumDuplicates,
			"conflicts", res.Summary.NumConflicts,
			"clusters", res.Summary.NumClusters,
			"suggestions", res.Summary.NumSuggestions)
		return nil
	}
}

// gatherer avoids wrapping a nil *Registry in a non-nil interface.
func gatherer(reg *prometheus.Registry) prometheus.Gatherer {
	if reg == nil {
		return nil
	}
	return reg
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
	if e, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", e.Code, e.Message), 1)
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
