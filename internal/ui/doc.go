// Package ui renders itpctl output for terminals with lipgloss.
//
// Decoded packets are printed as a one-line summary (sequence, kind, packet
// type, source, checksum marker) followed by the packet's decoded fields:
//
//	#12     SettingsGetResponse GetResponse heatpump ✓
//	         Fan:00 Mode:03 Power:On TargetTemp:22.000000 Vane:00 HVane:00
//	         PowerLock:No ModeLock:No TempLock:No
//
// Colours group packets by exchange: get traffic in blue, set traffic in
// orange, connect and identify in purple, undecoded packets in gray.
// lipgloss drops the styling when stdout is not a terminal, so the same
// output can be piped to a file.
//
// Commands that run for a while open with a Header box and close with a
// Result box:
//
//	fmt.Println(ui.NewHeader("Sniff", "itpctl sniff --port /dev/ttyUSB0",
//	    ui.Param{Key: "Port", Value: "/dev/ttyUSB0"},
//	    ui.Param{Key: "Line", Value: "2400 8E1"},
//	).Render())
//
//	fmt.Println(ui.NewSuccessResult("Capture complete",
//	    ui.Param{Key: "Frames", Value: "1024"},
//	).Render())
package ui
