// Command upnpctl is the CLI front-end over this module: discover
// devices, fetch and print a device's description tree, invoke a single
// action, or run a long-lived control point that keeps a registry warm.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/kardianos/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/castbridge/upnpgo/control"
	"github.com/castbridge/upnpgo/description"
	"github.com/castbridge/upnpgo/internal/conf"
	"github.com/castbridge/upnpgo/internal/log"
	"github.com/castbridge/upnpgo/soap"
	"github.com/castbridge/upnpgo/ssdp"
)

var (
	flagConfigFile  string
	flagTTL         int
	flagWait        time.Duration
	flagCount       int
	flagBroadcast   bool
	flagRaise       bool
	flagTargetKind  string
	flagMetricsAddr string
	flagEvery       string
	flagAdvertise   bool
	flagAsService   bool
)

func main() {
	root := &cobra.Command{
		Use:   "upnpctl",
		Short: "Discover and control UPnP devices on the local network",
	}
	root.PersistentFlags().StringVar(&flagConfigFile, "config", "", "path to a config file (optional)")
	root.PersistentFlags().IntVar(&flagTTL, "ttl", 0, "multicast TTL (default from config)")
	root.PersistentFlags().DurationVar(&flagWait, "response-wait", 0, "search response wait time")
	root.PersistentFlags().IntVar(&flagCount, "m-search-count", 0, "number of M-SEARCH datagrams sent per search")
	root.PersistentFlags().BoolVar(&flagBroadcast, "broadcast", false, "also search via limited broadcast")
	root.PersistentFlags().BoolVar(&flagRaise, "raise-on-remote-error", false, "fail a build if any service's SCPD cannot be fetched")
	root.PersistentFlags().StringVar(&flagTargetKind, "target", "ssdp:all", "search target (ssdp:all, upnp:rootdevice, or a URN)")

	root.AddCommand(discoverCmd(), describeCmd(), invokeCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*conf.Config, error) {
	cfg, err := conf.Load(flagConfigFile)
	if err != nil {
		return nil, err
	}
	if flagTTL != 0 {
		cfg.TTL = flagTTL
	}
	if flagWait != 0 {
		cfg.ResponseWaitTime = flagWait
	}
	if flagCount != 0 {
		cfg.MSearchCount = flagCount
	}
	if flagBroadcast {
		cfg.DoBroadcastSearch = true
	}
	if flagRaise {
		cfg.RaiseOnRemoteError = true
	}
	return cfg, nil
}

func installLogger(cfg *conf.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetDefault(log.NewLogrus(level))
}

func controlPointFromConfig(cfg *conf.Config) *control.ControlPoint {
	return control.New(control.Options{
		TTL:                cfg.TTL,
		ResponseWaitTime:   cfg.ResponseWaitTime,
		MSearchCount:       cfg.MSearchCount,
		DoBroadcastSearch:  cfg.DoBroadcastSearch,
		RaiseOnRemoteError: cfg.RaiseOnRemoteError,
	})
}

func discoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Run one SSDP search pass and list responding devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			installLogger(cfg)

			cp := controlPointFromConfig(cfg)
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ResponseWaitTime+2*time.Second)
			defer cancel()

			devices, err := cp.Search(ctx, ssdp.ParseTarget(flagTargetKind))
			if err != nil {
				return err
			}
			for _, d := range devices {
				fmt.Printf("%s\t%s\t%s\n", d.UDN, d.DeviceType, d.FriendlyName)
			}
			return nil
		},
	}
}

func describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <location-url>",
		Short: "Fetch a device description and print its tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			installLogger(cfg)

			builder := description.NewBuilder()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			device, err := builder.Build(ctx, args[0])
			if err != nil && (device == nil || cfg.RaiseOnRemoteError) {
				return err
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
			printDevice(device, "")
			return nil
		},
	}
}

func printDevice(d *description.Device, indent string) {
	fmt.Printf("%s%s (%s) udn=%s\n", indent, d.FriendlyName, d.DeviceType, d.UDN)
	for _, svc := range d.Services {
		fmt.Printf("%s  service %s [%s]\n", indent, svc.ServiceType, statusName(svc.Status))
		for _, a := range svc.Actions {
			fmt.Printf("%s    action %s\n", indent, a.Name)
		}
	}
	for _, child := range d.EmbeddedDevices {
		printDevice(child, indent+"  ")
	}
}

func statusName(s description.ServiceStatus) string {
	switch s {
	case description.ServiceReady:
		return "ready"
	case description.ServiceFailed:
		return "failed"
	default:
		return "pending"
	}
}

func invokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invoke <location-url> <service-type> <action> [args...]",
		Short: "Fetch a device description and invoke one action on it",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			installLogger(cfg)

			location, serviceType, actionName := args[0], args[1], args[2]
			inputs := args[3:]

			builder := description.NewBuilder()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			device, err := builder.Build(ctx, location)
			if err != nil && (device == nil || cfg.RaiseOnRemoteError) {
				return err
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}

			svc := findServiceByType(device, serviceType)
			if svc == nil {
				return fmt.Errorf("invoke: device at %s has no service %q", location, serviceType)
			}

			out, err := soap.NewDispatcher().Invoke(ctx, svc, actionName, inputs)
			if err != nil {
				return err
			}
			for name, v := range out {
				fmt.Printf("%s=%s\n", name, soapValueString(v))
			}
			return nil
		},
	}
}

func findServiceByType(d *description.Device, serviceType string) *description.Service {
	if d == nil {
		return nil
	}
	for _, svc := range d.Services {
		if svc.ServiceType == serviceType {
			return svc
		}
	}
	for _, child := range d.EmbeddedDevices {
		if svc := findServiceByType(child, serviceType); svc != nil {
			return svc
		}
	}
	return nil
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a long-lived control point: listen for NOTIFYs and keep a registry warm",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			installLogger(cfg)
			if flagAsService {
				return runServeAsService(cfg)
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (optional)")
	cmd.Flags().StringVar(&flagEvery, "every", "", "cron expression for recurring background discovery (optional)")
	cmd.Flags().BoolVar(&flagAdvertise, "advertise", false, "announce a synthesized local device via ssdp:alive while running")
	cmd.Flags().BoolVar(&flagAsService, "service", false, "run under the OS service manager instead of as a foreground process")
	return cmd
}

// runServeAsService runs serve's loop through kardianos/service, so the
// process can be driven by an OS service manager (systemd/launchd/Windows
// service); Run blocks until the service manager stops it.
func runServeAsService(cfg *conf.Config) error {
	svcConfig := &service.Config{
		Name:        "upnpctl",
		DisplayName: "upnpctl control point",
		Description: "Keeps a UPnP device registry warm by listening for SSDP NOTIFYs.",
	}
	prg := &serviceWrapper{cfg: cfg}
	s, err := service.New(prg, svcConfig)
	if err != nil {
		return fmt.Errorf("serve: --service: %w", err)
	}
	return s.Run()
}

// runServe owns its own signal trapping, per the explicit out-of-scope note:
// library code never installs signal handlers, only the CLI's long-running
// subcommand does.
func runServe(ctx context.Context, cfg *conf.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cp := controlPointFromConfig(cfg)
	if err := cp.Start(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer cp.Stop()

	var notifier *ssdp.Notifier
	if flagAdvertise {
		udn := "uuid:" + uuid.New().String()
		notifier = ssdp.NewNotifier("upnp:rootdevice", udn, "http://localhost/description.xml", 1800)
		if err := notifier.Start(ctx); err != nil {
			return fmt.Errorf("serve: advertise: %w", err)
		}
		defer notifier.Stop()
	}

	if flagMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: flagMetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Default().Error(ctx, "serve: metrics server stopped", "err", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if flagEvery != "" {
		c := cron.New()
		_, err := c.AddFunc(flagEvery, func() {
			searchCtx, cancel := context.WithTimeout(ctx, cfg.ResponseWaitTime+2*time.Second)
			defer cancel()
			if _, err := cp.Search(searchCtx, ssdp.ParseTarget(flagTargetKind)); err != nil {
				log.Default().Warn(ctx, "serve: scheduled discovery failed", "err", err)
			}
		})
		if err != nil {
			return fmt.Errorf("serve: invalid --every expression: %w", err)
		}
		c.Start()
		defer c.Stop()
	}

	<-ctx.Done()
	return nil
}

// serviceWrapper adapts runServe to github.com/kardianos/service's Program
// interface, letting `upnpctl serve --service` run as a managed OS service
// (Windows service / systemd / launchd) rather than a foreground process.
type serviceWrapper struct {
	cfg    *conf.Config
	cancel context.CancelFunc
}

func (w *serviceWrapper) Start(s service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go func() {
		if err := runServe(ctx, w.cfg); err != nil {
			log.Default().Error(ctx, "service: serve exited", "err", err)
		}
	}()
	return nil
}

func (w *serviceWrapper) Stop(s service.Service) error {
	if w.cancel != nil {
		w.cancel()
	}
	return nil
}

// soapValueString renders a coerced soap.Value for CLI output.
func soapValueString(v soap.Value) string {
	switch v.Class {
	case soap.ClassInteger:
		return fmt.Sprintf("%d", v.Int)
	case soap.ClassFloat:
		return fmt.Sprintf("%f", v.Float)
	case soap.ClassBoolean:
		return fmt.Sprintf("%t", v.Bool)
	case soap.ClassBinary:
		return fmt.Sprintf("%x", v.Bytes)
	default:
		return v.Str
	}
}
