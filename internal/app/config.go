package app

import (
	"os"
	"strconv"
	"time"

	"github.com/yeoro/twogether/pkg/jwtx"
)

type Config struct {
	JWTSecretHex   string // Required: hex-encoded HS256 secret, at least 256 bits
	Issuer         string // Optional: issuer claim for tokens (default: twogether)
	PasswordPepper string // Optional: secret mixed into password hashes; changing it invalidates stored hashes

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 168h)

	StoreDriver   string // Optional: store driver (redis, memory) (default: redis)
	RedisAddr     string // Optional: Redis host:port (default: localhost:6379)
	RedisPassword string // Optional: Redis password
	RedisDB       int    // Optional: Redis logical database (default: 0)

	KakaoClientID     string // Optional: Kakao REST API key; kakao login off when empty
	KakaoClientSecret string // Optional: Kakao client secret
	KakaoRedirectURI  string // Optional: callback URL registered with Kakao
	FrontURL          string // Optional: front-end origin the callback redirects to

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		JWTSecretHex:   os.Getenv("JWT_SECRET"),
		Issuer:         getEnvOrDefault("JWT_ISSUER", "twogether"),
		PasswordPepper: os.Getenv("PASSWORD_PEPPER"),

		AccessTokenTTL:  getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL: getEnvDurationOrDefault("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),

		StoreDriver:   getEnvOrDefault("STORE_DRIVER", "redis"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		KakaoClientID:     os.Getenv("KAKAO_CLIENT_ID"),
		KakaoClientSecret: os.Getenv("KAKAO_CLIENT_SECRET"),
		KakaoRedirectURI:  os.Getenv("KAKAO_REDIRECT_URI"),
		FrontURL:          getEnvOrDefault("FRONT_URL", "http://localhost:3000"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
