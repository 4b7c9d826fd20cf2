package server

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/f1-dashboard-service/pkg/openf1"
)

func TestDashboardURL(t *testing.T) {
	tests := []struct {
		name      string
		publicURL string
		addr      string
		want      string
	}{
		{"public wins", "https://f1.example.com", "localhost:8080", "https://f1.example.com"},
		{"localhost", "", "localhost:8080", "http://localhost:8080"},
		{"any host", "", ":8080", "http://localhost:8080"},
		{"all interfaces", "", "0.0.0.0:9000", "http://localhost:9000"},
		{"named host", "", "dash.local:80", "http://dash.local:80"},
		{"no port", "", "dash.local", "http://dash.local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dashboardURL(tt.publicURL, tt.addr))
		})
	}
}

func TestPrintQR(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, printQR(buf, "http://localhost:8080"))
	assert.Contains(t, buf.String(), "http://localhost:8080")
	assert.Greater(t, bytes.Count(buf.Bytes(), []byte("\n")), 10)
}

func TestUpstreamUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no session", openf1.ErrNoSession, true},
		{
			"upstream down",
			fmt.Errorf("%w: %w", openf1.ErrNoSession, openf1.ErrUpstreamUnavailable),
			false,
		},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, upstreamUnavailable(tt.err))
		})
	}
}
