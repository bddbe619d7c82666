package entity

import (
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid https feed", url: "https://elpais.com/rss/portada.xml", wantErr: false},
		{name: "valid http feed", url: "http://feeds.bbci.co.uk/mundo/rss.xml", wantErr: false},
		{name: "valid URL with port", url: "https://example.com:8443/feed", wantErr: false},
		{name: "valid URL with query", url: "https://news.google.com/rss/search?q=peru&hl=es", wantErr: false},
		{name: "hostname is not resolved", url: "https://internal.example.invalid/rss", wantErr: false},
		{name: "empty URL", url: "", wantErr: true},
		{name: "ftp scheme", url: "ftp://example.com/feed", wantErr: true},
		{name: "javascript scheme", url: "javascript:alert(1)", wantErr: true},
		{name: "no host", url: "https://", wantErr: true},
		{name: "no scheme", url: "example.com/rss", wantErr: true},
		{name: "malformed URL", url: "ht!tp://example.com", wantErr: true},
		{name: "URL exceeding maximum length", url: "https://example.com/" + strings.Repeat("a", maxURLLength), wantErr: true},
		{name: "localhost", url: "http://localhost/feed", wantErr: true},
		{name: "loopback literal", url: "http://127.0.0.1/rss", wantErr: true},
		{name: "private 10.x literal", url: "http://10.0.0.1/rss", wantErr: true},
		{name: "private 192.168.x literal", url: "http://192.168.1.10/rss", wantErr: true},
		{name: "cloud metadata endpoint", url: "http://169.254.169.254/latest", wantErr: true},
		{name: "IPv6 loopback literal", url: "http://[::1]/rss", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL_ReturnsValidationError(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "https://", "http://127.0.0.1"} {
		err := ValidateURL(raw)
		require.Error(t, err, raw)

		var validationErr *ValidationError
		require.True(t, errors.As(err, &validationErr), "%q: expected ValidationError, got %T", raw, err)
		assert.Equal(t, "url", validationErr.Field)
	}
}

func TestIsAbsoluteHTTPURL(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"https://example.com/a", true},
		{"  http://example.com/a  ", true},
		{"/relative/path", false},
		{"example.com/a", false},
		{"mailto:editor@example.com", false},
		{"https:///no-host", false},
		{"%zz", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAbsoluteHTTPURL(tt.raw))
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip        string
		isPrivate bool
	}{
		// ループバック
		{"127.0.0.1", true},
		{"127.1.2.3", true},
		{"::1", true},
		// リンクローカル
		{"169.254.169.254", true},
		{"fe80::1", true},
		// プライベートレンジ
		{"10.0.0.0", true},
		{"10.255.255.255", true},
		{"172.16.0.0", true},
		{"172.31.255.255", true},
		{"192.168.0.1", true},
		{"fd00::1", true},
		{"0.0.0.0", true},
		// 境界値とパブリックIP
		{"9.255.255.255", false},
		{"11.0.0.0", false},
		{"172.15.255.255", false},
		{"172.32.0.0", false},
		{"192.169.0.0", false},
		{"8.8.8.8", false},
		{"2001:4860:4860::8888", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			if ip == nil {
				t.Fatalf("failed to parse IP: %s", tt.ip)
			}
			if got := isPrivateIP(ip); got != tt.isPrivate {
				t.Errorf("isPrivateIP(%s) = %v, want %v", tt.ip, got, tt.isPrivate)
			}
		})
	}
}
