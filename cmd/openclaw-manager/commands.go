package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/urfave/cli/v3"

	"github.com/luno/openclaw"
	"github.com/luno/openclaw/adapters/httpapi"
)

var (
	errMissingArgument = errors.New("missing argument", j.C("ERR_0d6b3e91f2a84c57"))
	errInvalidDocument = errors.New("config document is invalid", j.C("ERR_a83f15c2e6d09b74"))
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "openclaw-manager",
		Usage: "Track gateway instances, their config and snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: defaultConfigPath(), Usage: "path to the YAML config file"},
		},
		Commands: []*cli.Command{
			registerCommand(),
			listCommand(),
			removeCommand(),
			pingCommand(),
			liveListCommand("agents", "Agents", openclaw.ListAgents),
			liveListCommand("channels", "Channels", openclaw.ListChannels),
			liveListCommand("models", "Models", openclaw.ListModels),
			snapshotCommand(),
			historyCommand(),
			compareCommand(),
			recordsCommand(),
			configCommand(),
			serveCommand(),
		},
	}
}

// withManager loads the config, wires a manager for the duration of fn and
// releases it afterwards.
func withManager(fn func(ctx context.Context, c *cli.Command, m *openclaw.Manager) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		cfg, err := loadConfig(c.String("config"))
		if err != nil {
			return err
		}

		d, err := wire(ctx, cfg)
		if err != nil {
			return err
		}
		defer d.Close()

		return fn(ctx, c, d.manager)
	}
}

func arg(c *cli.Command, i int, name string) (string, error) {
	v := c.Args().Get(i)
	if v == "" {
		return "", errors.Wrap(errMissingArgument, name, j.MKV{"command": c.Name})
	}
	return v, nil
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "Register a gateway instance",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "gateway websocket url"},
			&cli.StringFlag{Name: "token", Usage: "gateway bearer token"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Action: withManager(func(ctx context.Context, c *cli.Command, m *openclaw.Manager) error {
			name, err := arg(c, 0, "name")
			if err != nil {
				return err
			}

			inst, err := m.RegisterInstance(ctx, name, c.String("url"), c.String("token"))
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return printJSON(c.Root().Writer, inst)
			}
			_, err = fmt.Fprintf(c.Root().Writer, "registered %s (%s)\n", inst.Title, inst.ID)
			return err
		}),
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List registered instances",
		Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
		Action: withManager(func(ctx context.Context, c *cli.Command, m *openclaw.Manager) error {
			list, err := m.ListInstances(ctx)
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return printJSON(c.Root().Writer, list)
			}

			tw := tabwriter.NewWriter(c.Root().Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tURL\tSTATUS\tLAST PING")
			for _, inst := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					inst.ID,
					inst.Title,
					str(inst.Fields["url"]),
					str(inst.Fields["status"]),
					str(inst.Fields["lastPingAt"]),
				)
			}
			return tw.Flush()
		}),
	}
}

func str(v any) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove an instance",
		ArgsUsage: "<id>",
		Action: withManager(func(ctx context.Context, c *cli.Command, m *openclaw.Manager) error {
			id, err := arg(c, 0, "id")
			if err != nil {
				return err
			}

			if err := m.RemoveInstance(ctx, id); err != nil {
				return err
			}

			_, err = fmt.Fprintf(c.Root().Writer, "removed %s\n", id)
			return err
		}),
	}
}

func pingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "Connect to an instance's gateway and record the latency",
		ArgsUsage: "<id>",
		Action: withManager(func(ctx context.Context, c *cli.Command, m *openclaw.Manager) error {
			id, err := arg(c, 0, "id")
			if err != nil {
				return err
			}

			inst, err := m.Ping(ctx, id)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(c.Root().Writer, "%s online (%vms)\n", inst.Title, inst.Fields["lastPingLatencyMs"])
			return err
		}),
	}
}

// liveListCommand prints one list read from an instance's gateway. Nothing is
// stored.
func liveListCommand(name, heading string, method openclaw.ListMethod) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     "List the " + name + " live on an instance's gateway",
		ArgsUsage: "<id>",
		Flags:     []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
		Action: withManager(func(ctx context.Context, c *cli.Command, m *openclaw.Manager) error {
			id, err := arg(c, 0, "id")
			if err != nil {
				return err
			}

			items, err := m.ListLive(ctx, id, method)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			if c.Bool("json") {
				return printJSON(w, items)
			}

			if len(items) == 0 {
				_, err = fmt.Fprintf(w, "No %s found.\n", name)
				return err
			}

			fmt.Fprintf(w, "%s:\n", heading)
			for _, it := range items {
				b, err := json.Marshal(it)
				if err != nil {
					return errors.Wrap(err, "marshal item", j.MKV{"command": name})
				}
				fmt.Fprintf(w, "  - %s\n", b)
			}
			return nil
		}),
	}
}

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:      "snapshot",
		Usage:     "Capture a snapshot of an instance's gateway",
		ArgsUsage: "<id>",
		Action: withManager(func(ctx context.Context, c *cli.Command, m *openclaw.Manager) error {
			id, err := arg(c, 0, "id")
			if err != nil {
				return err
			}

			snap, err := m.CaptureFromGateway(ctx, id)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(c.Root().Writer, "captured %s: %v agents, %v channels, %v models\n",
				snap.ID, snap.Fields["agentCount"], snap.Fields["channelCount"], snap.Fields["modelCount"])
			return err
		}),
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "List an instance's snapshots, newest first",
		ArgsUsage: "<id>",
		Flags:     []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
		Action: withManager(func(ctx context.Context, c *cli.Command, m *openclaw.Manager) error {
			id, err := arg(c, 0, "id")
			if err != nil {
				return err
			}

			snaps, err := m.History(ctx, id)
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return printJSON(c.Root().Writer, snaps)
			}

			tw := tabwriter.NewWriter(c.Root().Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCAPTURED\tAGENTS\tCHANNELS\tMODELS")
			for _, s := range snaps {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					s.ID,
					str(s.Fields["capturedAt"]),
					str(s.Fields["agentCount"]),
					str(s.Fields["channelCount"]),
					str(s.Fields["modelCount"]),
				)
			}
			return tw.Flush()
		}),
	}
}

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "Show the field changes between two snapshots",
		ArgsUsage: "<snapshot-a> <snapshot-b>",
		Action: withManager(func(ctx context.Context, c *cli.Command, m *openclaw.Manager) error {
			a, err := arg(c, 0, "snapshot-a")
			if err != nil {
				return err
			}

			b, err := arg(c, 1, "snapshot-b")
			if err != nil {
				return err
			}

			changes, err := m.CompareSnapshots(ctx, a, b)
			if err != nil {
				return err
			}

			return printJSON(c.Root().Writer, changes)
		}),
	}
}

func recordsCommand() *cli.Command {
	return &cli.Command{
		Name:      "records",
		Usage:     "List the live records of a kind",
		ArgsUsage: "<kind-slug>",
		Action: withManager(func(ctx context.Context, c *cli.Command, m *openclaw.Manager) error {
			slug, err := arg(c, 0, "kind-slug")
			if err != nil {
				return err
			}

			records, err := m.ListRecords(ctx, slug)
			if err != nil {
				return err
			}

			return printJSON(c.Root().Writer, records)
		}),
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Work with config documents",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print the config document of an instance",
				ArgsUsage: "<id>",
				Action: withManager(func(ctx context.Context, c *cli.Command, m *openclaw.Manager) error {
					config, err := composeInstance(ctx, c, m)
					if err != nil {
						return err
					}

					return printJSON(c.Root().Writer, config)
				}),
			},
			{
				Name:      "export",
				Usage:     "Write the config document of an instance to a file",
				ArgsUsage: "<id> <file>",
				Action: withManager(func(ctx context.Context, c *cli.Command, m *openclaw.Manager) error {
					path, err := arg(c, 1, "file")
					if err != nil {
						return err
					}

					config, err := composeInstance(ctx, c, m)
					if err != nil {
						return err
					}

					f, err := os.Create(path)
					if err != nil {
						return errors.Wrap(err, "create export file", j.MKV{"path": path})
					}
					defer f.Close()

					if err := printJSON(f, config); err != nil {
						return err
					}

					_, err = fmt.Fprintf(c.Root().Writer, "exported to %s\n", path)
					return err
				}),
			},
			{
				Name:      "import",
				Usage:     "Replace the config records of an instance with a config document",
				ArgsUsage: "<id> <file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "import even when the document has validation errors"},
				},
				Action: withManager(func(ctx context.Context, c *cli.Command, m *openclaw.Manager) error {
					id, err := arg(c, 0, "id")
					if err != nil {
						return err
					}

					path, err := arg(c, 1, "file")
					if err != nil {
						return err
					}

					config, err := readConfigFile(path)
					if err != nil {
						return err
					}

					if res := m.ValidateConfig(config); !res.Valid && !c.Bool("force") {
						printMessages(c.Root().Writer, res)
						return errors.Wrap(errInvalidDocument, "", j.MKV{"path": path})
					}

					res, err := m.ImportConfig(ctx, id, config)
					if err != nil {
						return err
					}

					_, err = fmt.Fprintf(c.Root().Writer, "imported %d records\n", len(res.Records))
					return err
				}),
			},
			{
				Name:      "diff",
				Usage:     "Compare two config documents",
				ArgsUsage: "<file-a> <file-b>",
				Action: func(ctx context.Context, c *cli.Command) error {
					a, err := configArg(c, 0, "file-a")
					if err != nil {
						return err
					}

					b, err := configArg(c, 1, "file-b")
					if err != nil {
						return err
					}

					diff := openclaw.DiffConfigs(a, b)
					if diff.Empty() {
						_, err := fmt.Fprintln(c.Root().Writer, "no differences")
						return err
					}

					return printJSON(c.Root().Writer, diff)
				},
			},
			{
				Name:      "validate",
				Usage:     "Check a config document for missing fields and bad cron schedules",
				ArgsUsage: "<file>",
				Action: withManager(func(ctx context.Context, c *cli.Command, m *openclaw.Manager) error {
					config, err := configArg(c, 0, "file")
					if err != nil {
						return err
					}

					res := m.ValidateConfig(config)
					if !res.Valid {
						printMessages(c.Root().Writer, res)
						return errInvalidDocument
					}

					_, err = fmt.Fprintln(c.Root().Writer, "valid")
					return err
				}),
			},
		},
	}
}

func composeInstance(ctx context.Context, c *cli.Command, m *openclaw.Manager) (openclaw.Config, error) {
	id, err := arg(c, 0, "id")
	if err != nil {
		return nil, err
	}

	if _, err := m.GetInstance(ctx, id); err != nil {
		return nil, err
	}

	return m.Compose(ctx, id)
}

func configArg(c *cli.Command, i int, name string) (openclaw.Config, error) {
	path, err := arg(c, i, name)
	if err != nil {
		return nil, err
	}

	return readConfigFile(path)
}

func readConfigFile(path string) (openclaw.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config document", j.MKV{"path": path})
	}
	defer f.Close()

	return openclaw.LoadConfig(f)
}

func printMessages(w io.Writer, res openclaw.ValidationResult) {
	fmt.Fprintln(w, strings.Join(res.Messages(), "\n"))
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the read API and metrics over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address, overrides http.addr"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}

			if addr := c.String("addr"); addr != "" {
				cfg.HTTP.Addr = addr
			}

			d, err := wire(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			return serve(ctx, cfg.HTTP.Addr, httpapi.NewRouter(d.manager))
		},
	}
}

func serve(ctx context.Context, addr string, h http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen", j.MKV{"addr": addr})
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
