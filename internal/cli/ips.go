package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"phone2pc/internal/network"
)

func (a *app) newIPsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ips",
		Short: "Print the addresses a phone can send to",
		Long: `List the local IPv4 addresses together with the configured UDP port.
Enter one of them in the phone app.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bindFlags(cmd, map[string]string{"port": "port"}); err != nil {
				return err
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			ips, err := network.GetLocalIPs()
			if err != nil {
				return fmt.Errorf("list interfaces: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(ips) == 0 {
				fmt.Fprintln(out, "No IPv4 network interfaces are up.")
				return nil
			}
			for _, ip := range ips {
				fmt.Fprintf(out, "%s:%d\n", ip, cfg.Port)
			}
			return nil
		},
	}
	cmd.Flags().Int("port", 5000, "UDP port")
	return cmd
}
