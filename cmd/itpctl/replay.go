package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/itpctl/internal/config"
	"github.com/muurk/itpctl/internal/frame"
	"github.com/muurk/itpctl/internal/logging"
	"github.com/muurk/itpctl/internal/server"
	"github.com/muurk/itpctl/internal/ui"
)

var (
	replayHex   bool
	replayQuiet bool
	replayKinds []string
)

var replayCmd = &cobra.Command{
	Use:   "replay <capture.jsonl>",
	Short: "Decode a tap capture again and summarise it",
	Long: `Read a capture written by "itpctl sniff --capture-dir" and decode every
frame again with the current decoder.

The summary counts packets per kind, frames with a bad checksum and frames
whose decoded kind differs from the one recorded at capture time.`,
	Example: `  # Print every packet and the summary
  itpctl replay captures/capture-20260101-120000.jsonl

  # Only settings traffic
  itpctl replay --kind SettingsGetResponse --kind SettingsSetRequest capture.jsonl

  # Summary only
  itpctl replay -q capture.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayHex, "hex", false, "Show the frame bytes under each packet")
	replayCmd.Flags().BoolVarP(&replayQuiet, "quiet", "q", false, "Only print the summary")
	replayCmd.Flags().StringSliceVar(&replayKinds, "kind", nil, "Only show packets of these kinds")
	rootCmd.AddCommand(replayCmd)
}

// replayStats summarises one capture
type replayStats struct {
	events  int
	failed  int
	bad     int
	changed int
	kinds   map[string]int
}

func runReplay(cmd *cobra.Command, args []string) error {
	in, err := openCapture(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	out := cmd.OutOrStdout()
	show := make(map[string]bool, len(replayKinds))
	for _, k := range replayKinds {
		show[k] = true
	}

	stats := replayStats{kinds: make(map[string]int)}
	err = server.ReadCapture(in, func(line int, ev server.Event) error {
		stats.events++

		bridge, err := config.ParseSource(ev.Source)
		if err != nil {
			logging.Warn("Unknown source in capture, decoding untagged",
				zap.Int("line", line),
				zap.String("source", ev.Source),
			)
		}
		// Captures do not record the association
		m, err := decodeFrame(ev.Hex, bridge, frame.AssociationBridge)
		if err != nil {
			stats.failed++
			logging.Warn("Could not decode captured frame",
				zap.Int("line", line),
				zap.String("hex", ev.Hex),
				zap.Error(err),
			)
			return nil
		}

		kind := m.Kind().String()
		stats.kinds[kind]++
		if !m.Base().ChecksumValid() {
			stats.bad++
		}
		if ev.Kind != "" && ev.Kind != kind {
			stats.changed++
			logging.Debug("Decoded kind differs from capture",
				zap.Int("line", line),
				zap.String("recorded", ev.Kind),
				zap.String("decoded", kind),
			)
		}

		if !replayQuiet && (len(show) == 0 || show[kind]) {
			fmt.Fprintln(out, ui.RenderPacket(m, replayHex))
		}
		return nil
	})
	if err != nil {
		fmt.Fprintln(out, ui.NewFailureResult("Replay stopped", err,
			"Captures are JSON Lines files written by 'itpctl sniff --capture-dir'").String())
		return err
	}

	fmt.Fprintln(out, stats.result(args[0]).String())
	if stats.failed > 0 {
		return fmt.Errorf("%d of %d frames could not be decoded", stats.failed, stats.events)
	}
	return nil
}

func (s replayStats) result(name string) *ui.Result {
	params := []ui.Param{
		{Key: "Capture", Value: name},
		{Key: "Frames", Value: strconv.Itoa(s.events)},
		{Key: "Bad checksum", Value: strconv.Itoa(s.bad)},
		{Key: "Undecodable", Value: strconv.Itoa(s.failed)},
		{Key: "Kind changed", Value: strconv.Itoa(s.changed)},
	}
	if len(s.kinds) > 0 {
		params = append(params, ui.Param{Key: "Kinds", Value: s.kindSummary()})
	}

	if s.failed > 0 || s.bad > 0 {
		return ui.NewWarningResult("Replay finished with problems", params...)
	}
	return ui.NewSuccessResult("Replay finished", params...)
}

// kindSummary lists kinds by count, most frequent first
func (s replayStats) kindSummary() string {
	kinds := make([]string, 0, len(s.kinds))
	for k := range s.kinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if s.kinds[kinds[i]] != s.kinds[kinds[j]] {
			return s.kinds[kinds[i]] > s.kinds[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})

	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s=%d", k, s.kinds[k])
	}
	return strings.Join(parts, " ")
}
