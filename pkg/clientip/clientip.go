// Package clientip determines the client address of a request and carries it
// in the context so security-relevant log records can include it.
//
// Forwarded headers are spoofable by any client that reaches the service
// directly, so none are honoured unless listed:
//
//	ips := clientip.New("CF-Connecting-IP", "X-Forwarded-For")
//	r.Use(clientip.Middleware(ips))
package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Resolver extracts the client IP from a request.
type Resolver struct {
	headers []string
}

// New returns a resolver that consults trustedHeaders in order before falling
// back to the connection's remote address. Comma separated headers such as
// X-Forwarded-For yield their first valid address.
func New(trustedHeaders ...string) Resolver {
	headers := make([]string, 0, len(trustedHeaders))
	for _, h := range trustedHeaders {
		if h = strings.TrimSpace(h); h != "" {
			headers = append(headers, http.CanonicalHeaderKey(h))
		}
	}
	return Resolver{headers: headers}
}

// IP returns the normalized client address, or "" when none is valid.
func (res Resolver) IP(r *http.Request) string {
	for _, h := range res.headers {
		for candidate := range strings.SplitSeq(r.Header.Get(h), ",") {
			if ip := parseIP(candidate); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

func parseIP(s string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return addr.Unmap().WithZone("").String()
}
