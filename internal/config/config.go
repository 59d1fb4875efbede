package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	BrokerLocal = "local"
	BrokerRedis = "redis"

	EventsNone = "none"
	EventsMQTT = "mqtt"
	EventsNATS = "nats"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	Auth          AuthConfig
	PasswordReset PasswordResetConfig
	Upload        UploadConfig
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	Realtime      RealtimeConfig
	Events        EventsConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
	BodyLimit   int64
}

func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

type DatabaseConfig struct {
	Driver string

	MongoURI      string
	MongoDatabase string

	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds two independent signing secrets; a refresh token can never
// pass as an access token.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type AuthConfig struct {
	// UseRefreshCookie moves the refresh token into an http-only cookie and
	// drops it from response bodies.
	UseRefreshCookie bool
	CookieName       string
	CookieSecure     bool
}

type PasswordResetConfig struct {
	TTL                 time.Duration
	AppBaseURL          string
	SendLinkInResponse  bool
	CleanupInterval     time.Duration
	ExposeLinkInNonProd bool
}

type UploadConfig struct {
	Dir         string
	MaxFileSize int64
	MaxFiles    int
	URLPrefix   string
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type RealtimeConfig struct {
	Path     string
	Broker   string
	RedisURL string
	Channel  string
}

type EventsConfig struct {
	Driver string

	MQTTBroker      string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string

	NATSURL           string
	NATSSubjectPrefix string
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "4000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("SERVER_BODY_LIMIT", 16*1024)

	viper.SetDefault("DB_DRIVER", DriverMongo)
	viper.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGODB_DATABASE", "pet_adoption")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("ACCESS_TOKEN_EXPIRY", "15m")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY", "168h")
	viper.SetDefault("JWT_ISSUER", "pet-adoption-marketplace")

	viper.SetDefault("AUTH_COOKIE_NAME", "refreshToken")

	viper.SetDefault("PASSWORD_RESET_TTL_MINUTES", 30)
	viper.SetDefault("APP_BASE_URL", "http://localhost:5173")
	viper.SetDefault("PASSWORD_RESET_CLEANUP_INTERVAL", "1h")

	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("UPLOAD_MAX_FILE_SIZE", 5*1024*1024)
	viper.SetDefault("UPLOAD_MAX_FILES", 5)

	viper.SetDefault("RATE_LIMIT_GENERAL_RPS", 10)
	viper.SetDefault("RATE_LIMIT_GENERAL_BURST", 40)

	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	viper.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"})
	viper.SetDefault("CORS_EXPOSED_HEADERS", []string{"X-Request-ID"})
	viper.SetDefault("CORS_ALLOW_CREDENTIALS", true)
	viper.SetDefault("CORS_MAX_AGE", 43200)

	viper.SetDefault("REALTIME_PATH", "/ws")
	viper.SetDefault("REALTIME_BROKER", BrokerLocal)
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("REALTIME_CHANNEL", "realtime:rooms")

	viper.SetDefault("EVENTS_DRIVER", EventsNone)
	viper.SetDefault("MQTT_CLIENT_ID", "pet-adoption-api")
	viper.SetDefault("MQTT_TOPIC_PREFIX", "petadoption")
	viper.SetDefault("NATS_URL", "nats://127.0.0.1:4222")
	viper.SetDefault("NATS_SUBJECT_PREFIX", "petadoption")
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	environment := viper.GetString("ENVIRONMENT")

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: environment,
			BodyLimit:   viper.GetInt64("SERVER_BODY_LIMIT"),
		},
		Database: DatabaseConfig{
			Driver:        viper.GetString("DB_DRIVER"),
			MongoURI:      viper.GetString("MONGODB_URI"),
			MongoDatabase: viper.GetString("MONGODB_DATABASE"),
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			DBName:        viper.GetString("DB_NAME"),
			SSLMode:       viper.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			AccessSecret:  viper.GetString("ACCESS_TOKEN_SECRET"),
			RefreshSecret: viper.GetString("REFRESH_TOKEN_SECRET"),
			AccessExpiry:  viper.GetDuration("ACCESS_TOKEN_EXPIRY"),
			RefreshExpiry: viper.GetDuration("REFRESH_TOKEN_EXPIRY"),
			Issuer:        viper.GetString("JWT_ISSUER"),
		},
		Auth: AuthConfig{
			UseRefreshCookie: viper.GetBool("AUTH_USE_REFRESH_COOKIE"),
			CookieName:       viper.GetString("AUTH_COOKIE_NAME"),
			CookieSecure:     environment == "production",
		},
		PasswordReset: PasswordResetConfig{
			TTL:                 time.Duration(viper.GetInt("PASSWORD_RESET_TTL_MINUTES")) * time.Minute,
			AppBaseURL:          viper.GetString("APP_BASE_URL"),
			SendLinkInResponse:  viper.GetBool("SEND_RESET_LINK_IN_RESPONSE"),
			CleanupInterval:     viper.GetDuration("PASSWORD_RESET_CLEANUP_INTERVAL"),
			ExposeLinkInNonProd: environment != "production",
		},
		Upload: UploadConfig{
			Dir:         viper.GetString("UPLOAD_DIR"),
			MaxFileSize: viper.GetInt64("UPLOAD_MAX_FILE_SIZE"),
			MaxFiles:    viper.GetInt("UPLOAD_MAX_FILES"),
			URLPrefix:   "/uploads",
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   stringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   stringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   stringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   stringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
		Realtime: RealtimeConfig{
			Path:     viper.GetString("REALTIME_PATH"),
			Broker:   viper.GetString("REALTIME_BROKER"),
			RedisURL: viper.GetString("REDIS_URL"),
			Channel:  viper.GetString("REALTIME_CHANNEL"),
		},
		Events: EventsConfig{
			Driver:            viper.GetString("EVENTS_DRIVER"),
			MQTTBroker:        viper.GetString("MQTT_BROKER"),
			MQTTClientID:      viper.GetString("MQTT_CLIENT_ID"),
			MQTTUsername:      viper.GetString("MQTT_USERNAME"),
			MQTTPassword:      viper.GetString("MQTT_PASSWORD"),
			MQTTTopicPrefix:   viper.GetString("MQTT_TOPIC_PREFIX"),
			NATSURL:           viper.GetString("NATS_URL"),
			NATSSubjectPrefix: viper.GetString("NATS_SUBJECT_PREFIX"),
		},
	}

	return config, nil
}

// stringSlice accepts both comma separated env values and real lists.
func stringSlice(key string) []string {
	var out []string
	for _, item := range viper.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return err
	}

	switch c.Database.Driver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Realtime.Broker {
	case BrokerLocal, BrokerRedis:
	default:
		return fmt.Errorf("unknown REALTIME_BROKER %q", c.Realtime.Broker)
	}

	switch c.Events.Driver {
	case EventsNone, EventsMQTT, EventsNATS:
	default:
		return fmt.Errorf("unknown EVENTS_DRIVER %q", c.Events.Driver)
	}

	if c.Events.Driver == EventsMQTT && c.Events.MQTTBroker == "" {
		return errors.New("MQTT_BROKER is required when EVENTS_DRIVER=mqtt")
	}

	return nil
}

func (c JWTConfig) Validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	return nil
}

// ShouldExposeResetLink reports whether the reset link may be echoed back to
// the caller of the forgot-password endpoint.
func (c PasswordResetConfig) ShouldExposeResetLink() bool {
	return c.ExposeLinkInNonProd || c.SendLinkInResponse
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
