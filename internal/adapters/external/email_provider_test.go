package external

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// fakeSMTPServer accepts one session and records the DATA payload
type fakeSMTPServer struct {
	listener net.Listener
	mu       sync.Mutex
	rcpt     string
	data     string
	done     chan struct{}
}

func startFakeSMTPServer(t *testing.T) *fakeSMTPServer {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeSMTPServer{listener: l, done: make(chan struct{})}
	t.Cleanup(func() { _ = l.Close() })

	go s.serve()
	return s
}

func (s *fakeSMTPServer) port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *fakeSMTPServer) serve() {
	defer close(s.done)

	conn, err := s.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }

	reply("220 fake ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250 fake")
		case strings.HasPrefix(cmd, "MAIL FROM"):
			reply("250 OK")
		case strings.HasPrefix(cmd, "RCPT TO"):
			s.mu.Lock()
			s.rcpt = strings.TrimSpace(line)
			s.mu.Unlock()
			reply("250 OK")
		case cmd == "DATA":
			reply("354 go ahead")
			var body strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				body.WriteString(l)
			}
			s.mu.Lock()
			s.data = body.String()
			s.mu.Unlock()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("502 not implemented")
		}
	}
}

func TestSMTPEmailProviderAdapter_ValidateConfiguration(t *testing.T) {
	valid := ports.EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587, FromName: "Luna", FromAddress: "noreply@luna.app"}

	tests := []struct {
		name        string
		mutate      func(c *ports.EmailConfig)
		expectError bool
	}{
		{"Valid", func(c *ports.EmailConfig) {}, false},
		{"MissingHost", func(c *ports.EmailConfig) { c.SMTPHost = "" }, true},
		{"InvalidPort", func(c *ports.EmailConfig) { c.SMTPPort = 0 }, true},
		{"MissingFromAddress", func(c *ports.EmailConfig) { c.FromAddress = "" }, true},
		{"MissingFromName", func(c *ports.EmailConfig) { c.FromName = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := NewSMTPEmailProviderAdapter(cfg).ValidateConfiguration()
			if tt.expectError {
				assert.True(t, errors.IsConfigurationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSMTPEmailProviderAdapter_SendEmailValidation(t *testing.T) {
	provider := NewSMTPEmailProviderAdapter(ports.EmailConfig{SMTPHost: "localhost", SMTPPort: 1025, FromName: "Luna", FromAddress: "noreply@luna.app"})

	for _, params := range []ports.EmailParams{
		{Subject: "s", Body: "b"},
		{To: "a@example.com", Body: "b"},
		{To: "a@example.com", Subject: "s"},
	} {
		err := provider.SendEmail(context.Background(), params)
		assert.True(t, errors.IsValidationError(err))
	}
}

func TestSMTPEmailProviderAdapter_SendEmail(t *testing.T) {
	server := startFakeSMTPServer(t)
	provider := NewSMTPEmailProviderAdapter(ports.EmailConfig{
		SMTPHost:    "127.0.0.1",
		SMTPPort:    server.port(),
		FromName:    "Luna",
		FromAddress: "noreply@luna.app",
	})

	err := provider.SendEmail(context.Background(), ports.EmailParams{
		To:      "user@example.com",
		Subject: "Cycle irregularity detected",
		Body:    "<p>hello</p>",
		IsHTML:  true,
	})
	require.NoError(t, err)
	<-server.done

	server.mu.Lock()
	defer server.mu.Unlock()
	assert.Contains(t, server.rcpt, "user@example.com")
	assert.Contains(t, server.data, "Subject: Cycle irregularity detected")
	assert.Contains(t, server.data, "From: Luna <noreply@luna.app>")
	assert.Contains(t, server.data, "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, server.data, "<p>hello</p>")
}

func TestSMTPEmailProviderAdapter_ConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	provider := NewSMTPEmailProviderAdapter(ports.EmailConfig{
		SMTPHost:    "127.0.0.1",
		SMTPPort:    port,
		FromName:    "Luna",
		FromAddress: "noreply@luna.app",
	})
	err = provider.SendEmail(context.Background(), ports.EmailParams{To: "a@example.com", Subject: "s", Body: "b"})
	assert.True(t, errors.IsEmailError(err), strconv.Itoa(port))
}
