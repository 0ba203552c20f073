// Package discovery advertises and finds packet taps over mDNS.
//
// A running tap registers itself as an "_itp-tap._tcp" service so observers
// on the same network segment can find it without knowing its address. TXT
// records carry the WebSocket path, whether TLS is in use, and the itpctl
// version.
//
// # Advertising
//
//	ad, err := discovery.Advertise(ctx, "itpctl-loft", 8765, false)
//	if err != nil {
//	    return err
//	}
//	defer ad.Shutdown()
//
// # Browsing
//
//	taps, err := discovery.NewScanner().Scan(ctx)
//	for _, tap := range taps {
//	    fmt.Println(tap, tap.URL())
//	}
//
// Scanner.Find waits for a single instance by name and returns ErrNotFound
// when it does not answer within the scanner's timeout.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Taps and observers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
