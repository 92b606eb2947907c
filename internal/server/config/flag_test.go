package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{
			"-a", "127.0.0.1:8080", "-grpc", ":6000", "-d", "db", "-s", "secret",
			"-t", "1", "-email-ttl", "1h", "-reset-ttl", "10m",
			"-base-url", "https://contacts.example.com/", "-log-level", "debug",
			"-mail-server", "smtp.example.com", "-mail-port", "465", "-mail-user", "mailer", "-mail-password", "pw", "-mail-from", "robot@example.com",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrHTTP:            "127.0.0.1:8080",
				EndpointAddrGRPC:            ":6000",
				DatabaseDSN:                 "db",
				SecretKey:                   "secret",
				LogLevel:                    "debug",
				BaseURL:                     "https://contacts.example.com/",
				AccessTokenValidityDuration: 1 * time.Minute,
				EmailTokenValidityDuration:  time.Hour,
				ResetTokenValidityDuration:  10 * time.Minute,
				MailServer:                  "smtp.example.com",
				MailPort:                    465,
				MailUsername:                "mailer",
				MailPassword:                "pw",
				MailFrom:                    "robot@example.com",
				S3RootUser:                  "user",
				S3RootPassword:              "password",
				S3Bucket:                    "bucket",
				S3Region:                    "us-west-1",
				S3BaseEndpoint:              "http://endpoint",
			}},
		{name: "Test2 Unknown flags ignored", args: []string{"-x", "1", "-s=abc"}, expectPanic: false,
			expected: &Config{SecretKey: "abc"}},
		{name: "Test3 Bad duration", args: []string{"-email-ttl", "soon"}, expectPanic: true},
		{name: "Test4 Bad int", args: []string{"-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if tt.expectPanic {
				assert.Panics(t, func() { parseFlags(config, tt.args) })
				return
			}

			parseFlags(config, tt.args)
			if diff := cmp.Diff(tt.expected, config); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
