package config

import (
	"strconv"
	"strings"
	"time"
)

// lookupFunc matches os.LookupEnv.
type lookupFunc func(key string) (string, bool)

// parseEnv overlays the environment. The variable names are the ones the
// service has always been deployed with (PASSPORT_SECRET, CONNECTION_STRING,
// CLIENT_URL, NODE_ENV, PORT); the POSTGATE_* ones cover the newer settings.
// Unparsable values are ignored and leave the previous value in place.
func parseEnv(config *Config, lookup lookupFunc) {
	if v, ok := lookup("PASSPORT_SECRET"); ok && v != "" {
		config.SecretKey = v
	}
	if v, ok := lookup("CONNECTION_STRING"); ok && v != "" {
		config.DatabaseDSN = v
	}
	if v, ok := lookup("CLIENT_URL"); ok && v != "" {
		config.ClientURL = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			config.HTTPAddr = ":" + v
		}
	}
	if v, ok := lookup("NODE_ENV"); ok {
		config.Production = strings.EqualFold(v, "production")
		if config.Production {
			config.SecureCookies = true
		}
	}

	if v, ok := lookup("POSTGATE_GRPC_ADDR"); ok && v != "" {
		config.GRPCAddr = v
	}
	if v, ok := lookup("POSTGATE_SESSION_BACKEND"); ok && v != "" {
		config.SessionBackend = v
	}
	if v, ok := lookup("POSTGATE_LOG_LEVEL"); ok && v != "" {
		config.LogLevel = v
	}
	if v, ok := lookup("POSTGATE_STATIC_DIR"); ok && v != "" {
		config.StaticDir = v
	}
	if v, ok := lookup("POSTGATE_TRUST_CLIENT_OWNER"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.TrustClientOwner = b
		}
	}
	if v, ok := lookup("POSTGATE_SESSION_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.SessionTTL = d
		}
	}
	if v, ok := lookup("POSTGATE_TOKEN_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.TokenValidityDuration = d
		}
	}
}
