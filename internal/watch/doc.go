// Package watch is the terminal viewer for tap feeds.
//
// It follows the Elm architecture of Bubble Tea: a single Model moves through
// four screens.
//
//  1. Scanning: browses mDNS for _itp-tap._tcp services
//  2. Picking: lists the taps found (bubbles/list, filterable)
//  3. Connecting: dials the chosen tap's WebSocket URL
//  4. Watching: scrolls the decoded packets in a bubbles/viewport
//
// Starting with Options.URL set skips the first two screens.
//
// While watching, p pauses the display (events keep arriving and are shown
// on resume), x toggles the frame hex and c clears the scrollback. At most
// MaxEvents events are kept.
//
// # Usage Example
//
//	model := watch.NewModel(watch.Options{URL: "ws://pi.local:8765/ws"})
//	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
//	if err != nil {
//	    return err
//	}
//	final.(watch.Model).Close()
//
// Conn is usable on its own for scripting against a tap:
//
//	conn, err := watch.Dial(ctx, url, watch.DialOptions{})
//	for {
//	    ev, err := conn.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
package watch
