package fetcher

import (
	"fmt"
	"net"
	"net/url"

	"corruption-watch/internal/pipeline/apperr"
)

// validateURL rejects non-http(s) schemes and, when denyPrivateIPs is
// set, any hostname that resolves to a private, loopback, or
// link-local address (SSRF prevention).
func validateURL(urlStr string, denyPrivateIPs bool) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", apperr.ErrInvalidInput, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not allowed (only http/https)", apperr.ErrInvalidInput, u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: empty hostname", apperr.ErrInvalidInput)
	}

	if !denyPrivateIPs {
		return nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return fmt.Errorf("%w: DNS lookup failed for %s: %v", apperr.ErrFetchTerminal, hostname, err)
	}

	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("%w: hostname %q resolves to private IP %s", apperr.ErrFetchTerminal, hostname, ip)
		}
	}

	return nil
}

// isPrivateIP reports whether ip is loopback, private, or link-local,
// covering both IPv4 and IPv6 ranges.
func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}
