// Package cli implements the phone2pc command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"phone2pc/internal/config"
	"phone2pc/internal/logger"
)

// Version information set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo sets the version information (called from main).
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// app is the state shared by all subcommands of one root command.
type app struct {
	v       *viper.Viper
	cfgFile string
	log     logger.Logger
}

// NewRootCmd builds the phone2pc command tree.
func NewRootCmd() *cobra.Command {
	a := &app{
		v:   config.NewViper(),
		log: logger.New("phone2pc"),
	}

	root := &cobra.Command{
		Use:   "phone2pc",
		Short: "Drive the host cursor from a phone over UDP",
		Long: `phone2pc receives motion deltas from a phone on the local network and
moves the host cursor with them, smoothed and kept on screen.

Point the phone app at one of the addresses printed by 'phone2pc ips' and
run 'phone2pc serve'.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./phone2pc.yaml or ~/.config/phone2pc/phone2pc.yaml)")

	root.AddCommand(
		a.newServeCmd(),
		a.newSendCmd(),
		a.newIPsCmd(),
		a.newDiscoverCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig merges defaults, the config file, env and the bound flags.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, used, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return nil, err
	}
	if used != "" {
		a.log.Info("using config file %s", used)
	}
	return cfg, nil
}

// bindFlags ties flags to config keys so an explicitly set flag overrides
// the file and env. bindings maps config key to flag name.
func (a *app) bindFlags(cmd *cobra.Command, bindings map[string]string) error {
	for key, name := range bindings {
		if err := a.v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}
