package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckURLSafetyRejectsUnsafeTargets(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"loopback ip", "http://127.0.0.1:3000"},
		{"loopback ipv6", "http://[::1]:3000"},
		{"localhost", "http://localhost:3000"},
		{"private 10", "http://10.0.0.5:3000"},
		{"private 192.168", "http://192.168.1.10:3000"},
		{"private 172.16", "http://172.16.0.1:3000"},
		{"cloud metadata", "http://169.254.169.254/latest/meta-data"},
		{"unspecified", "http://0.0.0.0:3000"},
		{"ftp scheme", "ftp://example.com/engine"},
		{"no host", "http://"},
		{"not a url", "://broken"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckURLSafety(context.Background(), tc.url)
			assert.ErrorIs(t, err, ErrUnsafeURL, "url %q", tc.url)
		})
	}
}

func TestCheckURLSafetyAcceptsPublicIP(t *testing.T) {
	// 字面量公网IP不需要DNS解析
	assert.NoError(t, CheckURLSafety(context.Background(), "http://203.0.113.10:3000"))
	assert.NoError(t, CheckURLSafety(context.Background(), "https://198.51.100.7"))
}
