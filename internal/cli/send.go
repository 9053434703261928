package cli

import (
	"context"
	"fmt"
	"math"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"phone2pc/internal/network"
)

type sendOptions struct {
	to      string
	pattern string
	count   int
	rate    float64
	info    string
}

func (a *app) newSendCmd() *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Act as a phone: send a motion pattern to a receiver",
		Long: `Send CONNECT, a generated motion pattern and DISCONNECT to a receiver,
with heartbeats in between. Useful to check a receiver without a phone.

Examples:
  phone2pc send --to 192.168.1.20:5000
  phone2pc send --to 127.0.0.1:5000 --pattern line --count 100 --rate 60`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deltas, err := motionPattern(opts.pattern, opts.count)
			if err != nil {
				return err
			}
			if _, err := motionInterval(opts.rate); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sent, err := sendPattern(ctx, opts, deltas)
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d datagrams to %s\n", sent, opts.to)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.to, "to", "", "receiver address host:port")
	f.StringVar(&opts.pattern, "pattern", "circle", "motion pattern: circle or line")
	f.IntVar(&opts.count, "count", 120, "number of motion samples")
	f.Float64Var(&opts.rate, "rate", 60, "motion samples per second")
	f.StringVar(&opts.info, "info", "phone2pc_send", "client info sent with CONNECT")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// sendPattern plays deltas to opts.to at opts.rate and returns the number of
// datagrams written.
func sendPattern(ctx context.Context, opts sendOptions, deltas [][2]float64) (uint64, error) {
	interval, err := motionInterval(opts.rate)
	if err != nil {
		return 0, err
	}

	s, err := network.DialSender(opts.to)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	if err := s.Connect(opts.info); err != nil {
		return s.Sent(), err
	}
	s.StartHeartbeat(network.DefaultHeartbeatInterval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for _, d := range deltas {
		select {
		case <-ctx.Done():
			_ = s.Disconnect(opts.info)
			return s.Sent(), nil
		case <-ticker.C:
		}
		if err := s.Motion(d[0], d[1]); err != nil {
			return s.Sent(), err
		}
	}

	err = s.Disconnect(opts.info)
	return s.Sent(), err
}

// maxRate keeps the sample interval at one nanosecond or more.
const maxRate = 1e9

// motionInterval converts a rate in Hz to the ticker period.
func motionInterval(rate float64) (time.Duration, error) {
	if math.IsNaN(rate) || rate <= 0 || rate > maxRate {
		return 0, fmt.Errorf("rate must be in (0, %g] Hz, got %v", float64(maxRate), rate)
	}
	return time.Duration(float64(time.Second) / rate), nil
}

// motionPattern generates count deltas. "circle" traces one full circle of
// radius 200px; "line" moves right by 5px per sample.
func motionPattern(pattern string, count int) ([][2]float64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}

	deltas := make([][2]float64, count)
	switch pattern {
	case "circle":
		const radius = 200.0
		step := 2 * math.Pi / float64(count)
		// Chord between consecutive points on the circle.
		for i := range deltas {
			a0, a1 := float64(i)*step, float64(i+1)*step
			deltas[i] = [2]float64{
				radius * (math.Cos(a1) - math.Cos(a0)),
				radius * (math.Sin(a1) - math.Sin(a0)),
			}
		}
	case "line":
		for i := range deltas {
			deltas[i] = [2]float64{5, 0}
		}
	default:
		return nil, fmt.Errorf("unknown pattern %q (want circle or line)", pattern)
	}
	return deltas, nil
}
