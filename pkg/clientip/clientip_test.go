package clientip_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/clientip"
)

func TestResolver_IP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		trusted    []string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"remote addr", nil, nil, "192.0.2.10:5123", "192.0.2.10"},
		{"remote addr without port", nil, nil, "192.0.2.10", "192.0.2.10"},
		{"ipv6 remote addr", nil, nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"untrusted header ignored", nil, map[string]string{"X-Forwarded-For": "203.0.113.7"}, "192.0.2.10:1", "192.0.2.10"},
		{"trusted forwarded for", []string{"x-forwarded-for"}, map[string]string{"X-Forwarded-For": "garbage, 203.0.113.7, 10.0.0.1"}, "192.0.2.10:1", "203.0.113.7"},
		{"header order", []string{"CF-Connecting-IP", "X-Real-IP"}, map[string]string{"CF-Connecting-IP": "198.51.100.1", "X-Real-IP": "198.51.100.2"}, "192.0.2.10:1", "198.51.100.1"},
		{"invalid header falls back", []string{"X-Real-IP"}, map[string]string{"X-Real-IP": "not-an-ip"}, "192.0.2.10:1", "192.0.2.10"},
		{"ipv4 mapped", nil, nil, "[::ffff:192.0.2.5]:80", "192.0.2.5"},
		{"nothing valid", nil, nil, "pipe", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.New(tt.trusted...).IP(r))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var got string
	h := clientip.Middleware(clientip.New())(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = clientip.FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.44:9000"
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "192.0.2.44", got)
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()
	extract := clientip.LoggerExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)

	attr, ok := extract(clientip.WithContext(context.Background(), "192.0.2.1"))
	require.True(t, ok)
	assert.Equal(t, "client_ip", attr.Key)
	assert.Equal(t, "192.0.2.1", attr.Value.String())
}
