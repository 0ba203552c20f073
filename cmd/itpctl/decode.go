package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/itpctl/internal/config"
	"github.com/muurk/itpctl/internal/frame"
	"github.com/muurk/itpctl/internal/protocol"
	"github.com/muurk/itpctl/internal/server"
	"github.com/muurk/itpctl/internal/ui"
)

var (
	decodeSource      string
	decodeAssociation string
	decodeJSON        bool
	decodeHex         bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode [hex frame...]",
	Short: "Decode ITP frames given as hex",
	Long: `Decode one or more ITP frames and print their fields.

Each argument is one complete frame. Bytes may be separated by spaces,
dots, colons or commas. With no arguments, frames are read from stdin one
per line; blank lines and lines starting with # are skipped.

The source and association flags tag the frames with where they were
captured, which is how thermostat and heat pump traffic is told apart.`,
	Example: `  # Decode a settings get request
  itpctl decode fc42013001028a

  # Several frames in the pretty format
  itpctl decode "FC.5A.01.30.02.CA.01.A8" "FC.42.01.30.01.09.83"

  # Frames from a file, as JSON
  itpctl decode --json < frames.txt`,
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVar(&decodeSource, "source", "heatpump", "Link the frames came from: heatpump, thermostat or none")
	decodeCmd.Flags().StringVar(&decodeAssociation, "association", "bridge", "Controller association: bridge or thermostat")
	decodeCmd.Flags().BoolVar(&decodeJSON, "json", false, "Print one JSON event per frame")
	decodeCmd.Flags().BoolVar(&decodeHex, "hex", false, "Show the frame bytes under each packet")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	bridge, err := config.ParseSource(decodeSource)
	if err != nil {
		return err
	}
	association, err := config.ParseAssociation(decodeAssociation)
	if err != nil {
		return err
	}

	inputs := args
	if len(inputs) == 0 {
		if inputs, err = readFrameLines(cmd.InOrStdin()); err != nil {
			return err
		}
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no frames to decode")
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	failed := 0

	for _, input := range inputs {
		m, err := decodeFrame(input, bridge, association)
		if err != nil {
			failed++
			fmt.Fprintln(out, ui.NewFailureResult("Could not decode frame", err,
				"Frames start with FC and carry the payload length in byte 5").String())
			continue
		}

		if decodeJSON {
			if err := enc.Encode(server.NewEvent(m)); err != nil {
				return fmt.Errorf("failed to encode JSON: %w", err)
			}
			continue
		}
		fmt.Fprintln(out, ui.RenderPacket(m, decodeHex))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d frames could not be decoded", failed, len(inputs))
	}
	return nil
}

// decodeFrame parses one hex frame and decodes it to its message kind
func decodeFrame(input string, bridge frame.SourceBridge, association frame.ControllerAssociation) (protocol.Message, error) {
	raw, err := parseHexBytes(input)
	if err != nil {
		return nil, err
	}
	f, err := frame.Parse(raw, bridge, association)
	if err != nil {
		return nil, err
	}
	return protocol.Decode(f), nil
}

// readFrameLines collects the non-empty, non-comment lines of r
func readFrameLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read frames: %w", err)
	}
	return lines, nil
}
