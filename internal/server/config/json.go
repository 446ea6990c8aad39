package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/postgate/internal/flagx"
	"github.com/dmitrijs2005/postgate/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Only fields present in
// the file override the current values; durations accept "90s" or nanoseconds.
type JsonConfig struct {
	HTTPAddr               *string         `json:"http_addr"`
	GRPCAddr               *string         `json:"grpc_addr"`
	DatabaseDSN            *string         `json:"database_dsn"`
	SecretKey              *string         `json:"secret_key"`
	TokenValidityDuration  *timex.Duration `json:"token_validity_duration"`
	SessionTTL             *timex.Duration `json:"session_ttl"`
	SessionCleanupInterval *timex.Duration `json:"session_cleanup_interval"`
	SessionBackend         *string         `json:"session_backend"`
	SessionCookieName      *string         `json:"session_cookie_name"`
	AuthCookieName         *string         `json:"auth_cookie_name"`
	SecureCookies          *bool           `json:"secure_cookies"`
	ClientURL              *string         `json:"client_url"`
	StaticDir              *string         `json:"static_dir"`
	TrustClientOwner       *bool           `json:"trust_client_owner"`
	LogLevel               *string         `json:"log_level"`
	LogFormat              *string         `json:"log_format"`
	ShutdownTimeout        *timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads the file named by -c/-config in args, if any. An unreadable
// file or invalid JSON panics: the process cannot start with a broken config.
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

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.TokenValidityDuration, c.TokenValidityDuration)
	setDuration(&config.SessionTTL, c.SessionTTL)
	setDuration(&config.SessionCleanupInterval, c.SessionCleanupInterval)
	setString(&config.SessionBackend, c.SessionBackend)
	setString(&config.SessionCookieName, c.SessionCookieName)
	setString(&config.AuthCookieName, c.AuthCookieName)
	setBool(&config.SecureCookies, c.SecureCookies)
	setString(&config.ClientURL, c.ClientURL)
	setString(&config.StaticDir, c.StaticDir)
	setBool(&config.TrustClientOwner, c.TrustClientOwner)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
