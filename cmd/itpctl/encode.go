package main

import (
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/itpctl/internal/protocol"
	"github.com/muurk/itpctl/internal/ui"
)

var encodeFormat string

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Build ITP request frames",
	Long: `Build ITP frames and print them.

The default output is plain lowercase hex, ready to write to the serial
port. --format pretty prints dotted hex with the length, and --format
decoded renders the frame the way "itpctl decode" would.`,
}

var encodeRequestCmd = &cobra.Command{
	Use:     "request <name>",
	Aliases: []string{"get"},
	Short:   "Print one of the fixed requests",
	Long: `Print one of the fixed requests a bridge sends to the heat pump.

Available requests: ` + strings.Join(requestNames(), ", "),
	Example: `  # Handshake
  itpctl encode request connect

  # Poll settings, in the dotted format
  itpctl encode get settings --format pretty`,
	Args: cobra.ExactArgs(1),
	RunE: runEncodeRequest,
}

var (
	settingsPower string
	settingsMode  string
	settingsTemp  float64
	settingsFan   string
	settingsVane  string
	settingsHVane string
)

var encodeSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Build a settings set request",
	Long: `Build a settings set request. Only the fields given as flags are
flagged in the request; the heat pump leaves the others unchanged.

Modes:            ` + strings.Join(sortedKeys(modeNames), ", ") + `
Fan speeds:       ` + strings.Join(sortedKeys(fanNames), ", ") + `
Vane positions:   ` + strings.Join(sortedKeys(vaneNames), ", ") + `
Horizontal vane:  ` + strings.Join(sortedKeys(hvaneNames), ", "),
	Example: `  # Heat to 21.5°C
  itpctl encode settings --power on --mode heat --temp 21.5

  # Only change the fan
  itpctl encode settings --fan quiet`,
	RunE: runEncodeSettings,
}

var remoteTempInternal bool

var encodeRemoteTempCmd = &cobra.Command{
	Use:   "remote-temp [degC]",
	Short: "Report a room temperature from a remote sensor",
	Example: `  # Report 22.5°C
  itpctl encode remote-temp 22.5

  # Go back to the unit's own sensor
  itpctl encode remote-temp --internal`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEncodeRemoteTemp,
}

var runStateFilterReset bool

var encodeRunStateCmd = &cobra.Command{
	Use:   "run-state",
	Short: "Build a run state set request",
	Example: `  # Clear the filter service indicator
  itpctl encode run-state --filter-reset`,
	RunE: runEncodeRunState,
}

var (
	helloModel   string
	helloSerial  string
	helloVersion string
)

var encodeHelloCmd = &cobra.Command{
	Use:   "hello",
	Short: "Build a thermostat hello",
	Example: `  itpctl encode hello --model PAR3 --serial 12345ABCDE00 --version 1.2.3`,
	RunE:    runEncodeHello,
}

var (
	downloadTime string
	downloadAuto bool
	downloadHeat float64
	downloadCool float64
)

var encodeDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Build a thermostat state download response",
	Long: `Build the response a bridge sends when the thermostat asks for the
current state: wall-clock time, auto mode and the heat and cool setpoints.
Leave a setpoint out to mark it unsupported.`,
	Example: `  # Current time, heat to 20°C
  itpctl encode download --heat 20

  # Fixed time for reproducible frames
  itpctl encode download --time 2024-03-01T12:30:00Z --auto --heat 20 --cool 24`,
	RunE: runEncodeDownload,
}

func init() {
	encodeCmd.PersistentFlags().StringVar(&encodeFormat, "format", "hex", "Output format: hex, pretty or decoded")

	encodeSettingsCmd.Flags().StringVar(&settingsPower, "power", "", "Power: on or off")
	encodeSettingsCmd.Flags().StringVar(&settingsMode, "mode", "", "Operating mode")
	encodeSettingsCmd.Flags().Float64Var(&settingsTemp, "temp", 0, "Target temperature in °C")
	encodeSettingsCmd.Flags().StringVar(&settingsFan, "fan", "", "Fan speed")
	encodeSettingsCmd.Flags().StringVar(&settingsVane, "vane", "", "Vertical vane position")
	encodeSettingsCmd.Flags().StringVar(&settingsHVane, "hvane", "", "Horizontal vane position")

	encodeRemoteTempCmd.Flags().BoolVar(&remoteTempInternal, "internal", false, "Use the unit's internal sensor")

	encodeRunStateCmd.Flags().BoolVar(&runStateFilterReset, "filter-reset", false, "Reset the filter service indicator")

	encodeHelloCmd.Flags().StringVar(&helloModel, "model", "", "Model, up to 4 characters")
	encodeHelloCmd.Flags().StringVar(&helloSerial, "serial", "", "Serial number, up to 12 characters")
	encodeHelloCmd.Flags().StringVar(&helloVersion, "version", "0.0.0", "Firmware version as major.minor.patch")

	encodeDownloadCmd.Flags().StringVar(&downloadTime, "time", "now", "Wall-clock time (RFC 3339) or \"now\"")
	encodeDownloadCmd.Flags().BoolVar(&downloadAuto, "auto", false, "Auto mode enabled")
	encodeDownloadCmd.Flags().Float64Var(&downloadHeat, "heat", math.NaN(), "Heat setpoint in °C")
	encodeDownloadCmd.Flags().Float64Var(&downloadCool, "cool", math.NaN(), "Cool setpoint in °C")

	encodeCmd.AddCommand(encodeRequestCmd)
	encodeCmd.AddCommand(encodeSettingsCmd)
	encodeCmd.AddCommand(encodeRemoteTempCmd)
	encodeCmd.AddCommand(encodeRunStateCmd)
	encodeCmd.AddCommand(encodeHelloCmd)
	encodeCmd.AddCommand(encodeDownloadCmd)
	rootCmd.AddCommand(encodeCmd)
}

var requests = map[string]func() protocol.Message{
	"connect":      func() protocol.Message { return protocol.ConnectRequest() },
	"capabilities": func() protocol.Message { return protocol.CapabilitiesRequest() },
	"identify-cd":  func() protocol.Message { return protocol.IdentifyCDRequest() },
	"settings":     func() protocol.Message { return protocol.GetSettingsRequest() },
	"current-temp": func() protocol.Message { return protocol.GetCurrentTempRequest() },
	"status":       func() protocol.Message { return protocol.GetStatusRequest() },
	"run-state":    func() protocol.Message { return protocol.GetRunStateRequest() },
	"error-info":   func() protocol.Message { return protocol.GetErrorInfoRequest() },
	"functions1":   func() protocol.Message { return protocol.GetFunctions1Request() },
	"functions2":   func() protocol.Message { return protocol.GetFunctions2Request() },
}

func requestNames() []string {
	names := make([]string, 0, len(requests))
	for name := range requests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var modeNames = map[string]protocol.ModeByte{
	"heat": protocol.ModeHeat,
	"dry":  protocol.ModeDry,
	"cool": protocol.ModeCool,
	"fan":  protocol.ModeFan,
	"auto": protocol.ModeAuto,
}

var fanNames = map[string]protocol.FanByte{
	"auto":  protocol.FanAuto,
	"quiet": protocol.FanQuiet,
	"1":     protocol.Fan1,
	"2":     protocol.Fan2,
	"3":     protocol.Fan3,
	"4":     protocol.Fan4,
}

var vaneNames = map[string]protocol.VaneByte{
	"auto":  protocol.VaneAuto,
	"1":     protocol.Vane1,
	"2":     protocol.Vane2,
	"3":     protocol.Vane3,
	"4":     protocol.Vane4,
	"5":     protocol.Vane5,
	"swing": protocol.VaneSwing,
}

var hvaneNames = map[string]protocol.HorizontalVaneByte{
	"auto":       protocol.HVaneAuto,
	"left-full":  protocol.HVaneLeftFull,
	"left":       protocol.HVaneLeft,
	"center":     protocol.HVaneCenter,
	"right":      protocol.HVaneRight,
	"right-full": protocol.HVaneRightFull,
	"split":      protocol.HVaneSplit,
	"swing":      protocol.HVaneSwing,
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// lookupName resolves a named enum value case-insensitively
func lookupName[V any](kind string, names map[string]V, name string) (V, error) {
	v, ok := names[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		var zero V
		return zero, fmt.Errorf("unknown %s %q (valid: %s)", kind, name, strings.Join(sortedKeys(names), ", "))
	}
	return v, nil
}

func parsePower(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("unknown power %q (valid: on, off)", s)
}

// parseVersion reads "major.minor.patch" into the three hello bytes
func parseVersion(s string) ([3]byte, error) {
	var out [3]byte
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return out, fmt.Errorf("version %q must be major.minor.patch", s)
	}
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return out, fmt.Errorf("version %q: %w", s, err)
		}
		out[i] = byte(n)
	}
	return out, nil
}

func parseWallClock(s string) (time.Time, error) {
	if s == "" || strings.EqualFold(s, "now") {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}

// formatMessage renders m in the --format encoding
func formatMessage(m protocol.Message, format string) (string, error) {
	switch format {
	case "", "hex":
		return hex.EncodeToString(m.Base().Bytes()), nil
	case "pretty":
		return m.Base().Frame().String(), nil
	case "decoded":
		return ui.RenderPacket(m, true), nil
	}
	return "", fmt.Errorf("unknown format %q (valid: hex, pretty, decoded)", format)
}

func printMessage(cmd *cobra.Command, m protocol.Message) error {
	out, err := formatMessage(m, encodeFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runEncodeRequest(cmd *cobra.Command, args []string) error {
	build, ok := requests[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("unknown request %q (valid: %s)", args[0], strings.Join(requestNames(), ", "))
	}
	return printMessage(cmd, build())
}

func runEncodeSettings(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	p := protocol.NewSettingsSetRequestPacket()
	changed := false

	if flags.Changed("power") {
		on, err := parsePower(settingsPower)
		if err != nil {
			return err
		}
		p.SetPower(on)
		changed = true
	}
	if flags.Changed("mode") {
		mode, err := lookupName("mode", modeNames, settingsMode)
		if err != nil {
			return err
		}
		p.SetMode(mode)
		changed = true
	}
	if flags.Changed("temp") {
		if err := checkTemperature(settingsTemp); err != nil {
			return err
		}
		p.SetTargetTemperature(settingsTemp)
		changed = true
	}
	if flags.Changed("fan") {
		fan, err := lookupName("fan speed", fanNames, settingsFan)
		if err != nil {
			return err
		}
		p.SetFan(fan)
		changed = true
	}
	if flags.Changed("vane") {
		vane, err := lookupName("vane position", vaneNames, settingsVane)
		if err != nil {
			return err
		}
		p.SetVane(vane)
		changed = true
	}
	if flags.Changed("hvane") {
		hvane, err := lookupName("horizontal vane position", hvaneNames, settingsHVane)
		if err != nil {
			return err
		}
		p.SetHorizontalVane(hvane)
		changed = true
	}

	if !changed {
		return fmt.Errorf("nothing to set: give at least one of --power, --mode, --temp, --fan, --vane, --hvane")
	}
	return printMessage(cmd, p)
}

func runEncodeRemoteTemp(cmd *cobra.Command, args []string) error {
	p := protocol.NewRemoteTemperatureSetRequestPacket()

	switch {
	case remoteTempInternal && len(args) > 0:
		return fmt.Errorf("--internal and a temperature are mutually exclusive")
	case remoteTempInternal:
		p.SetUseInternalTemperature(true)
	case len(args) == 1:
		degC, err := parseTemperature(args[0])
		if err != nil {
			return err
		}
		p.SetRemoteTemperature(degC)
	default:
		return fmt.Errorf("give a temperature or --internal")
	}
	return printMessage(cmd, p)
}

func runEncodeRunState(cmd *cobra.Command, args []string) error {
	return printMessage(cmd, protocol.NewSetRunStatePacket().SetFilterReset(runStateFilterReset))
}

func runEncodeHello(cmd *cobra.Command, args []string) error {
	v, err := parseVersion(helloVersion)
	if err != nil {
		return err
	}
	p := protocol.NewThermostatHelloPacket().
		SetModel(helloModel).
		SetSerial(helloSerial).
		SetVersion(v[0], v[1], v[2])
	return printMessage(cmd, p)
}

func runEncodeDownload(cmd *cobra.Command, args []string) error {
	t, err := parseWallClock(downloadTime)
	if err != nil {
		return err
	}
	p := protocol.NewThermostatStateDownloadResponsePacket().
		SetTimestamp(t).
		SetAutoMode(downloadAuto).
		SetHeatSetpoint(downloadHeat).
		SetCoolSetpoint(downloadCool)
	return printMessage(cmd, p)
}

// parseTemperature reads a finite temperature in °C
func parseTemperature(s string) (float64, error) {
	degC, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid temperature %q: %w", s, err)
	}
	return degC, checkTemperature(degC)
}

func checkTemperature(degC float64) error {
	if math.IsNaN(degC) || math.IsInf(degC, 0) {
		return fmt.Errorf("invalid temperature %v: must be a finite number", degC)
	}
	return nil
}
