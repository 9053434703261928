package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"phone2pc/internal/network"
)

func (a *app) newDiscoverCmd() *cobra.Command {
	var apiPort int

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find phone2pc receivers on the local network",
		Long: `Scan every address of the local /24 for a phone2pc status API and print
the receivers that answer, with their UDP port.

Only receivers whose API listens on a LAN address (api.addr) can be found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			hosts, err := network.ScanLAN(ctx, apiPort)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(hosts) == 0 {
				fmt.Fprintln(out, "No receivers found.")
				return nil
			}
			for _, h := range hosts {
				fmt.Fprintf(out, "%s:%d (api port %d)\n", h.IP, h.UDPPort, h.APIPort)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&apiPort, "api-port", 5080, "status API port to query")
	return cmd
}
