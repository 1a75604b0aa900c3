package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/naveenspark/docduty/internal/desktop"
	"github.com/naveenspark/docduty/internal/identity"
	"github.com/naveenspark/docduty/internal/notify"
	"github.com/naveenspark/docduty/internal/push"
	"github.com/naveenspark/docduty/internal/state"
	"github.com/naveenspark/docduty/internal/tui"
	"github.com/naveenspark/docduty/pkg/domain"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docduty",
		Short:         "IITJ Health Center doctor duty schedule",
		Long:          "Browse doctor duty schedules and get notified when a doctor starts duty.\nRun without a command to open the interactive schedule.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd)
		},
	}
	root.AddCommand(
		schedulesCmd(),
		subscriptionsCmd(),
		subscribeCmd(),
		unsubscribeCmd(),
		registerTokenCmd(),
		deviceIDCmd(),
		pushCmd(),
		listenCmd(),
		healthCmd(),
		refreshDataCmd(),
		versionCmd(),
	)
	return root
}

// withEnv builds an appEnv logging to stderr and closes it after fn.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *appEnv) error) error {
	e, err := newAppEnv(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close() //nolint:errcheck // best-effort close
	return fn(cmd.Context(), e)
}

func runTUI(cmd *cobra.Command) error {
	e, err := newAppEnv(nil)
	if err != nil {
		return err
	}
	defer e.Close() //nolint:errcheck // best-effort close

	deviceID, err := e.deviceID()
	if err != nil {
		return err
	}

	// Forward the push token once per launch, in the background.
	reg := &push.Registrar{
		Repo:   e.repo,
		Store:  e.store,
		Tokens: push.StaticTokenSource(e.cfg.Push.FCMToken),
		Log:    e.log.WithField("component", "push"),
	}
	stopReg := registerInBackground(cmd.Context(), reg)
	defer stopReg()

	opts := tui.Options{
		Manager:  state.NewManager(e.repo),
		Web:      e.repo,
		Health:   e.repo,
		DeviceID: deviceID,
		AppURL:   e.cfg.App.URL,
		APIURL:   e.cfg.API.URL,
		Version:  version,
		Open:     desktop.Open,
	}
	if e.cfg.Push.SubscriptionFile != "" {
		opts.Push = &push.WebSubscriber{
			Repo:       e.repo,
			ServerKey:  e.cfg.Push.VAPIDPublicKey,
			Source:     push.FileSource{Path: e.cfg.Push.SubscriptionFile},
			Permission: push.AlwaysGranted,
		}
	}

	app := tui.NewApp(opts)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// registerInBackground runs reg.Register in its own goroutine. The returned
// func cancels it and waits for it to return.
func registerInBackground(ctx context.Context, reg *push.Registrar) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		reg.Register(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

func schedulesCmd() *cobra.Command {
	var (
		date     string
		today    bool
		tomorrow bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "Print doctor schedules, optionally for one date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := scheduleQuery(date, today, tomorrow, time.Now())
			if err != nil {
				return err
			}
			return withEnv(cmd, func(ctx context.Context, e *appEnv) error {
				mgr := state.NewManager(e.repo)
				mgr.LoadSchedules(ctx, query)
				if msg := mgr.Error.Get(); msg != "" {
					return errors.New(msg)
				}
				list := mgr.Schedules.Get()
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(list)
				}
				if id, ok, err := identity.LookupDeviceID(e.store); err == nil && ok {
					mgr.LoadSubscriptions(ctx, id)
				}
				printSchedules(cmd.OutOrStdout(), list, mgr.Subscribed.Get())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date to show (dd/mm/yyyy)")
	cmd.Flags().BoolVar(&today, "today", false, "Show today's schedule")
	cmd.Flags().BoolVar(&tomorrow, "tomorrow", false, "Show tomorrow's schedule")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	cmd.MarkFlagsMutuallyExclusive("date", "today", "tomorrow")
	return cmd
}

// scheduleQuery resolves the date flags into the API date parameter.
func scheduleQuery(date string, today, tomorrow bool, now time.Time) (string, error) {
	switch {
	case today:
		return domain.FilterToday.Date(now), nil
	case tomorrow:
		return domain.FilterTomorrow.Date(now), nil
	case date != "":
		if _, err := time.Parse(domain.DateLayout, date); err != nil {
			return "", fmt.Errorf("invalid --date %q: want dd/mm/yyyy", date)
		}
		return date, nil
	}
	return "", nil
}

func subscriptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscriptions",
		Short: "List doctors this device is subscribed to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *appEnv) error {
				id, err := e.deviceID()
				if err != nil {
					return err
				}
				names, err := e.repo.Subscriptions(ctx, id)
				if err != nil {
					return err
				}
				printSubscriptions(cmd.OutOrStdout(), domain.NewSubscriptionSet(names...))
				return nil
			})
		},
	}
}

func subscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe NAME",
		Short: "Get notified when a doctor starts duty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *appEnv) error {
				id, err := e.deviceID()
				if err != nil {
					return err
				}
				msg, err := e.repo.SubscribeDoctor(ctx, id, args[0])
				if err != nil {
					return err
				}
				printOK(cmd.OutOrStdout(), orDefault(msg, "Subscribed to "+args[0]))
				return nil
			})
		},
	}
}

func unsubscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe NAME",
		Short: "Stop notifications for a doctor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *appEnv) error {
				id, err := e.deviceID()
				if err != nil {
					return err
				}
				msg, err := e.repo.UnsubscribeDoctor(ctx, id, args[0])
				if err != nil {
					return err
				}
				printOK(cmd.OutOrStdout(), orDefault(msg, "Unsubscribed from "+args[0]))
				return nil
			})
		},
	}
}

func registerTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register-token [TOKEN]",
		Short: "Register a native push token for this device",
		Long:  "Register a native push token for this device. Without TOKEN, DOCDUTY_FCM_TOKEN is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *appEnv) error {
				reg := &push.Registrar{
					Repo:  e.repo,
					Store: e.store,
					Log:   e.log.WithField("component", "push"),
				}
				var ok bool
				if len(args) == 1 {
					ok = reg.OnNewToken(ctx, args[0])
				} else {
					reg.Tokens = push.StaticTokenSource(e.cfg.Push.FCMToken)
					ok = reg.Register(ctx)
				}
				if !ok {
					return errors.New("token registration failed")
				}
				printOK(cmd.OutOrStdout(), "Push token registered")
				return nil
			})
		},
	}
}

func deviceIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "device-id",
		Short: "Print this installation's device id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(_ context.Context, e *appEnv) error {
				id, err := e.deviceID()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
}

func pushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Email and web push notification subscriptions",
	}
	cmd.AddCommand(pushSubscribeCmd(), pushUnsubscribeCmd(), pushListCmd(), pushKeygenCmd())
	return cmd
}

func pushSubscribeCmd() *cobra.Command {
	var (
		email   string
		subFile string
		yes     bool
	)
	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribe an email address or a browser push subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" && subFile == "" {
				return errors.New("please enter your email (--email) or pass --subscription FILE")
			}
			return withEnv(cmd, func(ctx context.Context, e *appEnv) error {
				if email != "" {
					resp, err := e.repo.SubscribeEmail(ctx, strings.TrimSpace(email))
					if err != nil {
						return fmt.Errorf("subscription failed: %w", err)
					}
					printOK(cmd.OutOrStdout(), fmt.Sprintf("Subscribed successfully! You'll receive email notifications at %s", email))
					printSubscriptionID(cmd.OutOrStdout(), resp.SubscriptionID)
					return nil
				}
				ws := &push.WebSubscriber{
					Repo:       e.repo,
					ServerKey:  e.cfg.Push.VAPIDPublicKey,
					Source:     push.FileSource{Path: subFile},
					Permission: confirmPermission(cmd.InOrStdin(), cmd.OutOrStdout(), yes),
				}
				resp, err := ws.Subscribe(ctx)
				if err != nil {
					return fmt.Errorf("push subscription failed: %w", err)
				}
				printOK(cmd.OutOrStdout(), "Push notifications enabled successfully!")
				printSubscriptionID(cmd.OutOrStdout(), resp.SubscriptionID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address for notifications")
	cmd.Flags().StringVar(&subFile, "subscription", "", "Browser PushSubscription JSON file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the permission prompt")
	cmd.MarkFlagsMutuallyExclusive("email", "subscription")
	return cmd
}

// confirmPermission asks on in/out unless yes is set.
func confirmPermission(in io.Reader, out io.Writer, yes bool) push.PermissionFunc {
	if yes {
		return push.AlwaysGranted
	}
	return func(context.Context) (bool, error) {
		fmt.Fprint(out, "Allow doctor duty notifications? [y/N] ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}

func pushUnsubscribeCmd() *cobra.Command {
	var (
		email string
		id    int
	)
	cmd := &cobra.Command{
		Use:   "unsubscribe",
		Short: "Deactivate an email or push subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" && id == 0 {
				return errors.New("pass --email or --id")
			}
			return withEnv(cmd, func(ctx context.Context, e *appEnv) error {
				if _, err := e.repo.Unsubscribe(ctx, email, id); err != nil {
					return fmt.Errorf("unsubscribe failed: %w", err)
				}
				printOK(cmd.OutOrStdout(), "Unsubscribed successfully")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Subscribed email address")
	cmd.Flags().IntVar(&id, "id", 0, "Subscription id")
	return cmd
}

func pushListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active web subscriptions (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *appEnv) error {
				list, err := e.api.ListSubscriptions(ctx)
				if err != nil {
					return err
				}
				printSubscriptionList(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}
}

func pushKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a VAPID key pair for the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := push.GenerateKeys()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "VAPID_PUBLIC_KEY=%s\n", keys.PublicKey)
			fmt.Fprintf(out, "VAPID_PRIVATE_KEY=%s\n", keys.PrivateKey)
			return nil
		},
	}
}

func listenCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Show pushed notifications on this desktop",
		Long:  "Run a local receiver that shows push and message payloads as desktop notifications\nand opens the web app when a notification is clicked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *appEnv) error {
				if addr == "" {
					addr = e.cfg.Push.ListenAddr
				}
				log := e.log.WithField("component", "listen")
				display := notify.DesktopDisplayer{
					Notify: desktop.Notify,
					OnShow: func(n domain.PushNotification) {
						log.WithField("tag", n.Tag).Info(n.Title + ": " + n.Body)
					},
				}
				rc := notify.NewReceiver(display, desktop.Open, e.cfg.App.URL, e.log)

				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s (ctrl+c to stop)\n", addr)
				return rc.Serve(ctx, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default DOCDUTY_LISTEN_ADDR)")
	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *appEnv) error {
				status, err := e.repo.Health(ctx)
				if err != nil {
					return err
				}
				printOK(cmd.OutOrStdout(), fmt.Sprintf("%s is %s", e.cfg.API.URL, status))
				return nil
			})
		},
	}
}

func refreshDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-data",
		Short: "Ask the backend to re-ingest the schedule now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *appEnv) error {
				result, err := e.api.TriggerScrape(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout(), version)
		},
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
