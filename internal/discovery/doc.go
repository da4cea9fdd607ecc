// Package discovery finds smart TVs on the local network.
//
// Two independent mechanisms run side by side:
//
//   - SSDP: an M-SEARCH datagram is multicast to 239.255.255.250:1900 for each
//     search target and unicast replies are collected on the same socket for
//     a fixed listen window. Vendors are classified from the USN, ST and
//     SERVER headers.
//   - DNS-SD (mDNS): a fixed list of service types is browsed, each one
//     mapped statically to a vendor. Reported endpoints are resolved to a
//     concrete address before they are surfaced.
//
// Both scanners push candidates through callbacks as they arrive. The
// Coordinator owns the discovered set, runs both scanners concurrently,
// bounds the total scan time and drops any candidate whose host:port is
// already in the set.
//
// # Usage Example
//
//	coord := discovery.NewCoordinator(bus, logging.Named("discovery"),
//	    discovery.NewSSDPScanner(),
//	    discovery.NewServiceScanner(discovery.NewZeroconfBrowser()),
//	)
//	coord.Start()
//	<-coord.Done()
//	for _, d := range coord.Devices() {
//	    fmt.Println(d)
//	}
//
// # Network Requirements
//
//   - Multicast must be allowed on the active interface
//   - TVs must be on the same network segment
//   - Firewalls must allow UDP 1900 (SSDP) and UDP 5353 (mDNS)
package discovery
