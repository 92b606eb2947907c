package config

import (
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment variable read by parseEnv.
const EnvPrefix = "CONTACTKEEPER_"

// parseEnv overlays CONTACTKEEPER_* environment variables. Malformed numeric or
// duration values panic, like a malformed JSON file does.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(err)
			}
			*dst = n
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}

	str("HTTP_ADDR", &config.EndpointAddrHTTP)
	str("GRPC_ADDR", &config.EndpointAddrGRPC)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	str("LOG_LEVEL", &config.LogLevel)
	str("BASE_URL", &config.BaseURL)

	dur("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	dur("EMAIL_TOKEN_TTL", &config.EmailTokenValidityDuration)
	dur("RESET_TOKEN_TTL", &config.ResetTokenValidityDuration)

	str("MAIL_SERVER", &config.MailServer)
	num("MAIL_PORT", &config.MailPort)
	str("MAIL_USERNAME", &config.MailUsername)
	str("MAIL_PASSWORD", &config.MailPassword)
	str("MAIL_FROM", &config.MailFrom)
	str("MAIL_FROM_NAME", &config.MailFromName)
	str("MAIL_TLS_POLICY", &config.MailTLSPolicy)
	num("MAIL_QUEUE_SIZE", &config.MailQueueSize)
	num("MAIL_WORKERS", &config.MailWorkers)

	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("S3_PUBLIC_URL", &config.S3PublicURL)
}
