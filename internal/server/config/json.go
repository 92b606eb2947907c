package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/contactkeeper/internal/flagx"
	"github.com/dmitrijs2005/contactkeeper/internal/timex"
)

// JsonConfig is the on-disk form of Config. Pointer fields distinguish
// "absent" from zero values so a partial file only overrides what it names.
type JsonConfig struct {
	EndpointAddrHTTP *string `json:"endpoint_addr_http"`
	EndpointAddrGRPC *string `json:"endpoint_addr_grpc"`
	DatabaseDSN      *string `json:"database_dsn"`
	SecretKey        *string `json:"secret_key"`
	LogLevel         *string `json:"log_level"`
	BaseURL          *string `json:"base_url"`

	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	EmailTokenValidityDuration  *timex.Duration `json:"email_token_validity_duration"`
	ResetTokenValidityDuration  *timex.Duration `json:"reset_token_validity_duration"`

	MailServer    *string `json:"mail_server"`
	MailPort      *int    `json:"mail_port"`
	MailUsername  *string `json:"mail_username"`
	MailPassword  *string `json:"mail_password"`
	MailFrom      *string `json:"mail_from"`
	MailFromName  *string `json:"mail_from_name"`
	MailTLSPolicy *string `json:"mail_tls_policy"`
	MailQueueSize *int    `json:"mail_queue_size"`
	MailWorkers   *int    `json:"mail_workers"`

	S3RootUser     *string `json:"s3_root_user"`
	S3RootPassword *string `json:"s3_root_password"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`
	S3PublicURL    *string `json:"s3_public_url"`
}

// parseJson loads configuration values from the JSON file named by -c/-config.
// If no file is named nothing happens. If the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.BaseURL, c.BaseURL)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.EmailTokenValidityDuration != nil {
		config.EmailTokenValidityDuration = c.EmailTokenValidityDuration.Duration
	}
	if c.ResetTokenValidityDuration != nil {
		config.ResetTokenValidityDuration = c.ResetTokenValidityDuration.Duration
	}

	setString(&config.MailServer, c.MailServer)
	setInt(&config.MailPort, c.MailPort)
	setString(&config.MailUsername, c.MailUsername)
	setString(&config.MailPassword, c.MailPassword)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.MailFromName, c.MailFromName)
	setString(&config.MailTLSPolicy, c.MailTLSPolicy)
	setInt(&config.MailQueueSize, c.MailQueueSize)
	setInt(&config.MailWorkers, c.MailWorkers)

	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicURL, c.S3PublicURL)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
