package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fako1024/btmon"
	"github.com/fako1024/btmon/internal/config"
	"github.com/fako1024/btmon/internal/render"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time
var Version = "dev"

func newRootCmd(factory backendFactory) *cobra.Command {
	var (
		flagDevice string
		flagJSON   bool
		flagConfig string
	)

	rootCmd := &cobra.Command{
		Use:           "btmon",
		Short:         "Monitor Bluetooth device battery levels",
		Long:          "btmon reads the battery level of connected Bluetooth devices, combining the GATT Battery Service of Bluetooth LE peripherals with the battery information of paired classic devices.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.New(), flagConfig, cmd.Flags())
			if err != nil {
				return err
			}
			if flagJSON {
				cfg.Format = config.FormatJSON
			}

			logger := btmon.NewDefaultLogger(cfg.Debug)
			logger.Debugf("starting btmon (backend: %s, timeout: %s)", cfg.Backend, cfg.Timeout)

			devices := collectDevices(cmd, factory, cfg, logger, flagDevice)

			if len(devices) == 0 {
				if flagDevice != "" {
					logger.Warnf("no devices found matching filter `%s`", flagDevice)
					_, err = fmt.Fprintf(cmd.ErrOrStderr(), "no devices found matching '%s'\n", flagDevice)
				} else {
					logger.Warnf("no devices with battery info found")
					_, err = fmt.Fprintln(cmd.ErrOrStderr(), "no devices with battery info found")
				}
				return err
			}

			return writeDevices(cmd.OutOrStdout(), cfg.Format, devices)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&flagDevice, "device", "d", "", "filter by device name (partial match, case-insensitive)")
	flags.BoolVarP(&flagJSON, "json", "j", false, "output in JSON format (shorthand for --format json)")
	flags.StringVar(&flagConfig, "config", "", "path to a TOML config file")
	flags.String("format", config.FormatText, "output format (text|json|toml)")
	flags.Bool("debug", false, "enable debug output")
	flags.Duration("timeout", btmon.DefaultTimeout, "deadline for reading GATT battery levels")
	flags.Duration("pump-interval", btmon.DefaultPumpInterval, "duration of a single event loop iteration")
	flags.String("backend", config.BackendBlueZ, "Bluetooth LE backend (bluez|gatt)")
	flags.String("adapter", "", "Bluetooth adapter to use (e.g. hci0)")
	flags.String("dbus-address", "", "D-Bus address to connect to instead of the system bus")

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		},
	}
}

func collectDevices(cmd *cobra.Command, factory backendFactory, cfg config.Config, logger btmon.Logger, filter string) []btmon.Device {
	be, err := factory(cfg, logger)
	if err != nil {
		logger.Warnf("failed to initialize %s backend: %s", cfg.Backend, err)
		return nil
	}
	defer func() {
		if err := be.Close(); err != nil {
			logger.Warnf("failed to release %s backend: %s", cfg.Backend, err)
		}
	}()

	reader := btmon.New(
		btmon.WithCentral(be.central),
		btmon.WithTimeout(cfg.Timeout),
		btmon.WithPumpInterval(cfg.PumpInterval),
		btmon.WithLogger(logger),
	)

	start := time.Now()
	devices := btmon.ConnectedDevices(cmd.Context(), reader, be.classic, filter)
	logger.Debugf("found %d device(s) in %s", len(devices), time.Since(start))

	return devices
}

func writeDevices(w io.Writer, format string, devices []btmon.Device) error {
	switch format {
	case config.FormatJSON:
		return render.JSON(w, devices)
	case config.FormatTOML:
		return render.TOML(w, devices)
	}

	styles := render.PlainStyles()
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		styles = render.DefaultStyles()
	}
	return render.Text(w, devices, styles)
}
