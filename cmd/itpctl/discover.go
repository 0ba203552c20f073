package main

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/itpctl/internal/discovery"
	"github.com/muurk/itpctl/internal/ui"
)

var (
	discoverTimeout int
	discoverName    string
	discoverJSON    bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find taps on the local network",
	Long: `Browse mDNS for taps started with "itpctl sniff --mdns" and print
the WebSocket URL of each.`,
	Example: `  # List every tap
  itpctl discover

  # Wait for one tap by name
  itpctl discover --name itpctl-livingroom --timeout 10

  # JSON output for scripting
  itpctl discover --json`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
	discoverCmd.Flags().StringVar(&discoverName, "name", "", "Stop as soon as this instance is found")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "Print the services as JSON")
	rootCmd.AddCommand(discoverCmd)
}

// discoveredTap is the JSON shape printed by --json
type discoveredTap struct {
	Instance string            `json:"instance"`
	Hostname string            `json:"hostname"`
	Address  string            `json:"address"`
	URL      string            `json:"url"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func runDiscover(cmd *cobra.Command, args []string) error {
	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(discoverTimeout) * time.Second

	out := cmd.OutOrStdout()
	if !discoverJSON {
		fmt.Fprintf(out, "Scanning for taps (timeout: %ds)...\n\n", discoverTimeout)
	}

	var services []*discovery.Service
	if discoverName != "" {
		svc, err := scanner.Find(cmd.Context(), discoverName)
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}
		services = []*discovery.Service{svc}
	} else {
		found, err := scanner.Scan(cmd.Context())
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}
		services = found
	}

	if discoverJSON {
		taps := make([]discoveredTap, 0, len(services))
		for _, svc := range services {
			taps = append(taps, discoveredTap{
				Instance: svc.Instance,
				Hostname: svc.Hostname,
				Address:  net.JoinHostPort(svc.IP, strconv.Itoa(svc.Port)),
				URL:      svc.URL(),
				Metadata: svc.Metadata,
			})
		}
		data, err := json.MarshalIndent(taps, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(services) == 0 {
		fmt.Fprintln(out, ui.NewWarningResult("No taps found",
			ui.Param{Key: "Hint", Value: "start one with 'itpctl sniff --listen --mdns'"},
			ui.Param{Key: "Hint", Value: "mDNS does not cross routers or most VPNs"},
		).String())
		return nil
	}

	fmt.Fprintf(out, "Found %d tap(s):\n\n", len(services))
	for i, svc := range services {
		fmt.Fprintf(out, "%d. %s\n", i+1, svc.Instance)
		fmt.Fprintf(out, "   Host:    %s\n", svc.Hostname)
		fmt.Fprintf(out, "   URL:     %s\n", svc.URL())
		if v := svc.GetMetadata("version"); v != "" {
			fmt.Fprintf(out, "   Version: %s\n", v)
		}
		fmt.Fprintln(out)
	}
	return nil
}
