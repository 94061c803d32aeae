package server

import (
	"context"
	"fmt"
	"net"
	"net/url"
)

// CheckURLSafety rejects URLs that would let an admin point the dispatcher
// at loopback, private, link-local or cloud-metadata addresses. Hostnames
// are resolved so a DNS name fronting an internal address is caught too.
func CheckURLSafety(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q is not allowed", ErrUnsafeURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrUnsafeURL)
	}

	if ip := net.ParseIP(host); ip != nil {
		return checkIP(ip)
	}

	if host == "localhost" {
		return fmt.Errorf("%w: localhost is not allowed", ErrUnsafeURL)
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	for _, addr := range addrs {
		if err := checkIP(addr.IP); err != nil {
			return err
		}
	}
	return nil
}

func checkIP(ip net.IP) error {
	switch {
	case ip.IsLoopback():
		return fmt.Errorf("%w: %s is a loopback address", ErrUnsafeURL, ip)
	case ip.IsPrivate():
		return fmt.Errorf("%w: %s is a private address", ErrUnsafeURL, ip)
	case ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast():
		// 含 169.254.169.254 云元数据地址
		return fmt.Errorf("%w: %s is a link-local address", ErrUnsafeURL, ip)
	case ip.IsUnspecified():
		return fmt.Errorf("%w: %s is an unspecified address", ErrUnsafeURL, ip)
	case ip.IsMulticast():
		return fmt.Errorf("%w: %s is a multicast address", ErrUnsafeURL, ip)
	}
	return nil
}
