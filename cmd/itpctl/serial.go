package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.bug.st/serial"

	"github.com/muurk/itpctl/internal/config"
	"github.com/muurk/itpctl/internal/logging"
	"go.uber.org/zap"
)

// serialMode translates the configured line settings
func serialMode(sc *config.SerialConfig) (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: sc.BaudRate,
		DataBits: sc.DataBits,
	}

	switch strings.ToLower(sc.Parity) {
	case "none":
		mode.Parity = serial.NoParity
	case "even":
		mode.Parity = serial.EvenParity
	case "odd":
		mode.Parity = serial.OddParity
	default:
		return nil, fmt.Errorf("unsupported parity %q", sc.Parity)
	}

	switch sc.StopBits {
	case 1:
		mode.StopBits = serial.OneStopBit
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unsupported stop bits %d", sc.StopBits)
	}

	return mode, nil
}

// openSerial opens a UART for reading ITP frames
func openSerial(port string, sc *config.SerialConfig) (serial.Port, error) {
	mode, err := serialMode(sc)
	if err != nil {
		return nil, err
	}

	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}

	logging.Info("Serial port opened",
		zap.String("port", port),
		zap.Int("baud", mode.BaudRate),
		zap.Int("data_bits", mode.DataBits),
		zap.String("parity", sc.Parity),
		zap.Int("stop_bits", sc.StopBits),
	)
	return p, nil
}

// openCapture opens a recorded byte stream; "-" is stdin
func openCapture(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}
	return f, nil
}
