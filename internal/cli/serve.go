package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"phone2pc/internal/api"
	"phone2pc/internal/config"
	"phone2pc/internal/controller"
	"phone2pc/internal/input"
	"phone2pc/internal/logger"
	"phone2pc/internal/network"
	"phone2pc/internal/osutils"
	"phone2pc/internal/status"
	"phone2pc/internal/tray"
)

// Virtual screen used by --dry-run.
const (
	dryRunWidth  = 1920
	dryRunHeight = 1080
)

type serveOptions struct {
	noAPI  bool
	tray   bool
	dryRun bool
}

func (a *app) newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Receive motion packets and move the cursor",
		Long: `Listen for MOTION/CONNECT/DISCONNECT/HEARTBEAT datagrams and move the host
cursor. Runs until interrupted.

Examples:
  phone2pc serve
  phone2pc serve --port 6000 --sensitivity 1.5 --smoothing 0.5
  phone2pc serve --dry-run --no-api`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bindFlags(cmd, map[string]string{
				"host":            "host",
				"port":            "port",
				"sensitivity":     "sensitivity",
				"smoothing":       "smoothing",
				"status_interval": "status-interval",
				"api.addr":        "api-addr",
				"api.token":       "api-token",
				"firewall":        "firewall",
			}); err != nil {
				return err
			}
			if opts.noAPI {
				a.v.Set("api.enabled", false)
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cfg, opts)
		},
	}

	d := config.DefaultConfig()
	f := cmd.Flags()
	f.String("host", d.Host, "UDP bind address")
	f.Int("port", d.Port, "UDP port")
	f.Float64("sensitivity", d.Sensitivity, "motion gain, 0.1 to 5.0")
	f.Float64("smoothing", d.Smoothing, "smoothing factor, 0 (none) to 1 (frozen)")
	f.Duration("status-interval", d.StatusInterval, "status report interval")
	f.String("api-addr", d.API.Addr, "status API listen address")
	f.String("api-token", "", "bearer token required by the status API")
	f.Bool("firewall", d.Firewall, "add an inbound firewall rule for the UDP port (Windows)")
	f.BoolVar(&opts.noAPI, "no-api", false, "disable the status API")
	f.BoolVar(&opts.tray, "tray", false, "show a system tray icon")
	f.BoolVar(&opts.dryRun, "dry-run", false, "move a virtual cursor instead of the real one")
	return cmd
}

// serve runs the receiver, and the optional API and tray, until ctx ends or
// the receiver fails.
func (a *app) serve(ctx context.Context, cfg *config.Config, opts serveOptions) error {
	pointer, err := newPointer(opts.dryRun)
	if err != nil {
		return err
	}

	logAddresses(a.log, cfg.Port)

	if cfg.Firewall {
		go func() {
			if err := osutils.EnsureFirewallRule(cfg.Port, logger.New("Firewall")); err != nil {
				a.log.Warn("firewall: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Report sinks are registered before Run starts and never change after.
	var sinks []func(status.Report)
	ctrl := controller.New(controller.Options{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Sensitivity:    cfg.Sensitivity,
		Smoothing:      cfg.Smoothing,
		StatusInterval: cfg.StatusInterval,
		ReadTimeout:    cfg.ReadTimeout,
		ReadBuffer:     cfg.ReadBuffer,
		OnReport: func(r status.Report) {
			for _, sink := range sinks {
				sink(r)
			}
		},
	}, pointer, logger.New("Receiver"))

	g, gctx := errgroup.WithContext(ctx)

	if cfg.API.Enabled {
		srv := api.NewServer(ctrl, cfg.API.Token, logger.New("API"))
		sinks = append(sinks, srv.BroadcastReport)
		g.Go(func() error {
			// The API is optional: a bind failure is logged, not fatal.
			if err := srv.Start(gctx, cfg.API.Addr); err != nil {
				a.log.Warn("continuing without the status API: %v", err)
			}
			return nil
		})
	}

	var st *tray.StatusTray
	if opts.tray {
		st = tray.NewStatusTray(ctrl, cancel)
		sinks = append(sinks, st.ShowReport)
	}

	g.Go(func() error {
		defer cancel()
		return ctrl.Run(gctx)
	})

	if st != nil {
		// systray wants the main goroutine; it returns once Stop is called.
		go func() {
			<-gctx.Done()
			st.Stop()
		}()
		st.Run()
		cancel()
	}

	err = g.Wait()
	a.log.Info("shut down")
	return err
}

func newPointer(dryRun bool) (input.Pointer, error) {
	if dryRun {
		return input.NewVirtualPointer(dryRunWidth/2, dryRunHeight/2, dryRunWidth, dryRunHeight), nil
	}
	return input.NewSystemPointer()
}

// logAddresses prints where the phone should send to.
func logAddresses(log logger.Logger, port int) {
	ips, err := network.GetLocalIPs()
	if err != nil || len(ips) == 0 {
		log.Warn("no IPv4 address found, is the network up?")
		return
	}
	for _, ip := range ips {
		log.Info("send to %s:%d", ip, port)
	}
}
