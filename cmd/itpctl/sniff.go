package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/itpctl/internal/config"
	"github.com/muurk/itpctl/internal/discovery"
	"github.com/muurk/itpctl/internal/frame"
	"github.com/muurk/itpctl/internal/logging"
	"github.com/muurk/itpctl/internal/monitor"
	"github.com/muurk/itpctl/internal/protocol"
	"github.com/muurk/itpctl/internal/server"
	"github.com/muurk/itpctl/internal/ui"
)

var (
	sniffPort        string
	sniffFile        string
	sniffLink        string
	sniffSource      string
	sniffAssociation string
	sniffBaud        int
	sniffHex         bool
	sniffQuiet       bool
	sniffListen      bool
	sniffHost        string
	sniffTapPort     int
	sniffMDNS        bool
	sniffName        string
	sniffCaptureDir  string
)

var sniffCmd = &cobra.Command{
	Use:   "sniff",
	Short: "Decode live ITP traffic",
	Long: `Read ITP frames from a serial port or a recorded byte stream and
print every packet as it is decoded.

The serial line settings come from the config file (2400 8E1 by default).
A named link from the config supplies the port and the source tag.

With --listen, every packet is also broadcast as JSON to WebSocket clients
on /ws, and --mdns announces the tap on the local network so that
"itpctl discover" can find it.`,
	Example: `  # Sniff the heat pump side of a bridge
  itpctl sniff --port /dev/ttyUSB0 --source heatpump

  # Use a configured link
  itpctl sniff --link heatpump

  # Replay a raw capture with frame bytes shown
  itpctl sniff --file bus.bin --hex

  # Serve packets to observers and announce the tap
  itpctl sniff --link heatpump --listen --mdns --capture-dir ./captures`,
	RunE: runSniff,
}

func init() {
	f := sniffCmd.Flags()
	f.StringVarP(&sniffPort, "port", "p", "", "Serial port, e.g. /dev/ttyUSB0")
	f.StringVarP(&sniffFile, "file", "f", "", "Read raw bytes from a file (- for stdin) instead of a serial port")
	f.StringVarP(&sniffLink, "link", "l", "", "Named link from the config file")
	f.StringVar(&sniffSource, "source", "heatpump", "Link the frames come from: heatpump, thermostat or none")
	f.StringVar(&sniffAssociation, "association", "bridge", "Controller association: bridge or thermostat")
	f.IntVar(&sniffBaud, "baud", 0, "Override the configured baud rate")
	f.BoolVar(&sniffHex, "hex", false, "Show the frame bytes under each packet")
	f.BoolVarP(&sniffQuiet, "quiet", "q", false, "Do not print packets (useful with --listen)")
	f.BoolVar(&sniffListen, "listen", false, "Serve packets to WebSocket clients")
	f.StringVar(&sniffHost, "host", "", "Tap listen address (default from config: all interfaces)")
	f.IntVar(&sniffTapPort, "tap-port", 0, "Tap listen port (default from config: 8765)")
	f.BoolVar(&sniffMDNS, "mdns", false, "Announce the tap over mDNS (implies --listen)")
	f.StringVar(&sniffName, "name", "", "mDNS instance name (default: itpctl-<hostname>)")
	f.StringVar(&sniffCaptureDir, "capture-dir", "", "Record tap events as JSON Lines in this directory")

	sniffCmd.MarkFlagsMutuallyExclusive("port", "file", "link")
	rootCmd.AddCommand(sniffCmd)
}

// sniffInput is the byte stream to read and how to tag its frames
type sniffInput struct {
	source      io.ReadCloser
	description string
	bridge      frame.SourceBridge
	association frame.ControllerAssociation
}

func runSniff(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	input, err := openSniffInput(cmd, cfg)
	if err != nil {
		return err
	}
	defer input.source.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	params := []ui.Param{
		{Key: "Input", Value: input.description},
		{Key: "Source", Value: input.bridge.String()},
		{Key: "Association", Value: input.association.String()},
	}

	var sinks monitor.MultiSink
	if !sniffQuiet {
		sinks = append(sinks, ui.NewPacketPrinter(out, sniffHex))
	}

	var tap *server.Tap
	tapDone := make(chan error, 1)
	if sniffListen || sniffMDNS {
		tap, err = startTap(ctx, cmd, cfg, tapDone)
		if err != nil {
			return err
		}
		sinks = append(sinks, tap)
		params = append(params, ui.Param{Key: "Tap", Value: tapURL(tap)})

		if sniffMDNS || cfg.Tap.Advertise {
			adv, err := advertiseTap(ctx, cfg, tap)
			if err != nil {
				logging.Warn("mDNS advertisement failed", zap.Error(err))
				params = append(params, ui.Param{Key: "mDNS", Value: "failed: " + err.Error()})
			} else {
				defer adv.Shutdown()
				params = append(params, ui.Param{Key: "mDNS", Value: discovery.ServiceType})
			}
		}
	}

	fmt.Fprintln(out, ui.NewHeader("Sniff", cmd.CommandPath(), params...).String())

	sniffer := &monitor.Sniffer{
		Source:      input.source,
		Bridge:      input.bridge,
		Association: input.association,
		Processors:  []protocol.Processor{monitor.NewLoggingProcessor()},
		Sink:        sinks,
	}

	start := time.Now()
	runErr := sniffer.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	// A finished file leaves the tap running until interrupted
	if tap != nil {
		if runErr == nil && ctx.Err() == nil {
			fmt.Fprintln(out, ui.NewWarningResult("Input finished, tap still serving",
				ui.Param{Key: "Stop", Value: "press Ctrl+C"}).String())
			<-ctx.Done()
		}
		stop()
		if err := <-tapDone; err != nil {
			logging.Error("Tap stopped with error", zap.Error(err))
		}
	}

	stats := sniffer.Stats()
	if sniffLink != "" && stats.Frames > 0 {
		cfg.UpdateLinkLastSeen(sniffLink)
		if err := saveConfig(cfg); err != nil {
			logging.Warn("Failed to record link activity", zap.Error(err))
		}
	}

	if runErr != nil {
		fmt.Fprintln(out, ui.NewFailureResult("Sniffing stopped", runErr,
			"Check the serial adapter is still connected",
			"The ITP bus runs at 2400 baud, 8 data bits, even parity, 1 stop bit").String())
		return runErr
	}

	result := ui.NewSuccessResult("Sniffing finished",
		ui.Param{Key: "Frames", Value: strconv.FormatUint(stats.Frames, 10)},
		ui.Param{Key: "Bad checksum", Value: strconv.FormatUint(stats.Dropped, 10)},
		ui.Param{Key: "Invalid", Value: strconv.FormatUint(stats.Skipped, 10)},
		ui.Param{Key: "Duration", Value: time.Since(start).Round(time.Second).String()},
	)
	if tap != nil {
		result.AddDetail("Published", strconv.FormatUint(tap.Published(), 10))
		if c := tap.Status().Capture; c != "" {
			result.AddDetail("Capture", c)
		}
	}
	fmt.Fprintln(out, result.String())
	return nil
}

// openSniffInput resolves --file, --port or --link to an open stream. Flags
// given explicitly win over the link's settings.
func openSniffInput(cmd *cobra.Command, cfg *config.Config) (*sniffInput, error) {
	flags := cmd.Flags()
	sourceName, associationName := sniffSource, sniffAssociation
	port := sniffPort

	if sniffLink != "" {
		link := cfg.GetLink(sniffLink)
		if link == nil {
			return nil, fmt.Errorf("link %q is not configured (see 'itpctl config show')", sniffLink)
		}
		port = link.Port
		if !flags.Changed("source") && link.Source != "" {
			sourceName = link.Source
		}
		if !flags.Changed("association") && link.Association != "" {
			associationName = link.Association
		}
	}

	bridge, err := config.ParseSource(sourceName)
	if err != nil {
		return nil, err
	}
	association, err := config.ParseAssociation(associationName)
	if err != nil {
		return nil, err
	}

	in := &sniffInput{bridge: bridge, association: association}

	switch {
	case sniffFile != "":
		if in.source, err = openCapture(sniffFile); err != nil {
			return nil, err
		}
		in.description = "file " + sniffFile
	case port != "":
		serialCfg := *cfg.Serial
		if sniffBaud > 0 {
			serialCfg.BaudRate = sniffBaud
		}
		if in.source, err = openSerial(port, &serialCfg); err != nil {
			return nil, err
		}
		in.description = fmt.Sprintf("%s (%d %d%c%d)", port,
			serialCfg.BaudRate, serialCfg.DataBits, parityLetter(serialCfg.Parity), serialCfg.StopBits)
	default:
		return nil, fmt.Errorf("nothing to read: give --port, --file or --link")
	}

	return in, nil
}

func parityLetter(parity string) rune {
	switch parity {
	case "even":
		return 'E'
	case "odd":
		return 'O'
	}
	return 'N'
}

// startTap binds the tap and serves it in the background. The result of
// Start is delivered on done once ctx is cancelled.
func startTap(ctx context.Context, cmd *cobra.Command, cfg *config.Config, done chan<- error) (*server.Tap, error) {
	tc := &server.Config{
		Host:       cfg.Tap.Host,
		Port:       cfg.Tap.Port,
		CertPath:   cfg.Tap.CertPath,
		KeyPath:    cfg.Tap.KeyPath,
		CaptureDir: cfg.Tap.CaptureDir,
	}
	flags := cmd.Flags()
	if flags.Changed("host") {
		tc.Host = sniffHost
	}
	if flags.Changed("tap-port") {
		tc.Port = sniffTapPort
	}
	if flags.Changed("capture-dir") {
		tc.CaptureDir = sniffCaptureDir
	}

	tap, err := server.New(tc)
	if err != nil {
		return nil, fmt.Errorf("failed to create tap: %w", err)
	}
	if err := tap.Listen(); err != nil {
		return nil, fmt.Errorf("failed to start tap: %w", err)
	}

	go func() {
		done <- tap.Start(ctx)
	}()
	return tap, nil
}

func tapURL(tap *server.Tap) string {
	scheme := "ws"
	if tap.TLS() {
		scheme = "wss"
	}
	return scheme + "://" + tap.Addr().String() + discovery.DefaultPath
}

// advertiseTap announces the tap's bound port over mDNS
func advertiseTap(ctx context.Context, cfg *config.Config, tap *server.Tap) (*discovery.Advertisement, error) {
	addr, ok := tap.Addr().(*net.TCPAddr)
	if !ok {
		return nil, fmt.Errorf("tap is not listening on TCP")
	}

	name := sniffName
	if name == "" {
		name = cfg.Tap.Name
	}
	if name == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "unknown"
		}
		name = "itpctl-" + host
	}

	return discovery.Advertise(ctx, name, addr.Port, tap.TLS())
}

// saveConfig writes cfg back to where it was loaded from
func saveConfig(cfg *config.Config) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	return cfg.SaveTo(path)
}
