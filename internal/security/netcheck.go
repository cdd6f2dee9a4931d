package security

import "net/netip"

// isPrivateHost reports whether a hostname targets the local machine or a
// private/link-local address range. Hostnames that are not IP literals are
// only matched against the well-known localhost name; DNS resolution is
// deliberately out of scope for a pure validator.
func isPrivateHost(host string) bool {
	if host == "localhost" {
		return true
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}

	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsUnspecified()
}
