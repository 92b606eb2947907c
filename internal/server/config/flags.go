package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/flagx"
)

var knownFlags = []string{
	"-a", "-grpc", "-d", "-s", "-t", "-email-ttl", "-reset-ttl", "-base-url", "-log-level",
	"-mail-server", "-mail-port", "-mail-user", "-mail-password", "-mail-from",
	"-u", "-p", "-b", "-g", "-e",
}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string          REST bind address (e.g., ":8000")
//	-grpc string       gRPC health bind address
//	-d string          PostgreSQL DSN ("" = in-memory)
//	-s string          JWT HMAC secret key
//	-t int             access token validity, minutes
//	-email-ttl dur     email confirmation token validity (e.g. "24h")
//	-reset-ttl dur     password reset token validity
//	-base-url string   public URL used in emailed links
//	-log-level string  debug|info|warn|error
//	-mail-server, -mail-port, -mail-user, -mail-password, -mail-from   SMTP settings
//	-u, -p, -b, -g, -e S3 user, password, bucket, region, base endpoint
//
// Only these flags are considered (see flagx.FilterArgs); a malformed value panics.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run REST server")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "address and port to run gRPC health server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	fs.DurationVar(&config.EmailTokenValidityDuration, "email-ttl", config.EmailTokenValidityDuration, "email confirmation token validity")
	fs.DurationVar(&config.ResetTokenValidityDuration, "reset-ttl", config.ResetTokenValidityDuration, "password reset token validity")

	fs.StringVar(&config.BaseURL, "base-url", config.BaseURL, "public base URL")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	fs.StringVar(&config.MailServer, "mail-server", config.MailServer, "SMTP server")
	fs.IntVar(&config.MailPort, "mail-port", config.MailPort, "SMTP port")
	fs.StringVar(&config.MailUsername, "mail-user", config.MailUsername, "SMTP username")
	fs.StringVar(&config.MailPassword, "mail-password", config.MailPassword, "SMTP password")
	fs.StringVar(&config.MailFrom, "mail-from", config.MailFrom, "sender address")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket for avatars")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
