// Package fetcher looks up representative images on article pages.
// It backs the aggregator's optional image backfill for items whose feed
// carried no usable image.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
)

var (
	ErrInvalidURL       = errors.New("invalid URL")
	ErrPrivateIP        = errors.New("private IP address not allowed")
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrBodyTooLarge     = errors.New("response body too large")
)

// validateURL guards article page lookups against SSRF. Article links come
// from third-party feeds, so with denyPrivate set the host is resolved and
// every address must be public. Redirect hops are checked the same way.
func validateURL(ctx context.Context, raw string, denyPrivate bool) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not allowed", ErrInvalidURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: empty hostname", ErrInvalidURL)
	}
	if !denyPrivate {
		return nil
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		return checkAddr(host, addr)
	}
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", ErrInvalidURL, host, err)
	}
	for _, addr := range addrs {
		if err := checkAddr(host, addr); err != nil {
			return err
		}
	}
	return nil
}

func checkAddr(host string, addr netip.Addr) error {
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsUnspecified() {
		return fmt.Errorf("%w: %s resolves to %s", ErrPrivateIP, host, addr)
	}
	return nil
}
