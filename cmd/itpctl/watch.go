package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/itpctl/internal/discovery"
	"github.com/muurk/itpctl/internal/watch"
)

var (
	watchTimeout  int
	watchInsecure bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [url]",
	Short: "Follow a tap's packet feed in a full-screen viewer",
	Long: `Open an interactive viewer on a tap started with "itpctl sniff --listen".

Without a URL, taps are discovered over mDNS and offered in a list.`,
	Example: `  # Pick a tap from the network
  itpctl watch

  # Connect directly
  itpctl watch ws://192.168.1.20:8765/ws

  # A tap serving a self-signed certificate
  itpctl watch --insecure wss://pi.local:8765/ws`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "mDNS scan timeout in seconds")
	watchCmd.Flags().BoolVar(&watchInsecure, "insecure", false, "Do not verify the tap's TLS certificate")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(watchTimeout) * time.Second

	opts := watch.Options{
		Scanner: scanner,
		Dial:    watch.DialOptions{Insecure: watchInsecure},
	}
	if len(args) == 1 {
		opts.URL = args[0]
	}

	program := tea.NewProgram(watch.NewModel(opts), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}

	model, ok := final.(watch.Model)
	if !ok {
		return nil
	}
	model.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Received %d packet(s)\n", model.Total())
	return model.Err()
}
