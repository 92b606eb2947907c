package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseJson(t *testing.T) {
	path := writeTempConfig(t, `{
		"endpoint_addr_http": ":9000",
		"database_dsn": "",
		"access_token_validity_duration": "5m",
		"email_token_validity_duration": 3600000000000,
		"mail_from": "robot@example.com",
		"s3_bucket": "pics"
	}`)

	var c Config
	c.LoadDefaults()
	parseJson(&c, []string{"-config", path})

	assert.Equal(t, ":9000", c.EndpointAddrHTTP)
	assert.Equal(t, "", c.DatabaseDSN)
	assert.Equal(t, 5*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, time.Hour, c.EmailTokenValidityDuration)
	assert.Equal(t, 2*time.Hour, c.ResetTokenValidityDuration)
	assert.Equal(t, "robot@example.com", c.MailFrom)
	assert.Equal(t, "pics", c.S3Bucket)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
}

func TestParseJson_NoFileIsNoop(t *testing.T) {
	var c, want Config
	c.LoadDefaults()
	want.LoadDefaults()

	parseJson(&c, []string{"-a", ":1"})

	assert.Equal(t, want, c)
}

func TestParseJson_Panics(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.json")
	broken := writeTempConfig(t, `{"secret_key":`)

	var c Config
	assert.Panics(t, func() { parseJson(&c, []string{"-c", missing}) })
	assert.Panics(t, func() { parseJson(&c, []string{"-c", broken}) })
}
