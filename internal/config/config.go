// ===============================
// internal/config/config.go - Application configuration
// ===============================

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the YAML config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// StorageConfig holds the S3-compatible object store configuration
type StorageConfig struct {
	AccountID  string `koanf:"account_id"`
	AccessKey  string `koanf:"access_key"`
	SecretKey  string `koanf:"secret_key"`
	BucketName string `koanf:"bucket_name"`
	Endpoint   string `koanf:"endpoint"`
	Region     string `koanf:"region"`
	PublicURL  string `koanf:"public_url"`
	RootFolder string `koanf:"root_folder"`
}

// LogConfig controls the zerolog output
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// AuthzConfig points at optional casbin model/policy files
type AuthzConfig struct {
	ModelPath  string `koanf:"model_path"`
	PolicyPath string `koanf:"policy_path"`
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	Environment string `koanf:"environment"`
	Port        string `koanf:"port"`

	// Database configuration
	DatabaseURL string `koanf:"database_url"`

	// Object storage
	Storage StorageConfig `koanf:"storage"`

	// CORS configuration
	AllowedOrigins []string `koanf:"allowed_origins"`

	// Security
	JWTSecret          string        `koanf:"jwt_secret"`
	JWTTTL             time.Duration `koanf:"jwt_ttl"`
	AdminSignupEnabled bool          `koanf:"admin_signup_enabled"`
	Authz              AuthzConfig   `koanf:"authz"`

	// Limits
	RateLimitPerMinute int   `koanf:"rate_limit_per_minute"`
	MaxUploadMB        int64 `koanf:"max_upload_mb"`

	Log LogConfig `koanf:"log"`
}

func defaultConfig() *Config {
	return &Config{
		Environment: "debug",
		Port:        "8080",
		Storage: StorageConfig{
			BucketName: "animax",
			Region:     "auto",
			RootFolder: "Animax",
		},
		AllowedOrigins:     []string{"http://localhost:3000"},
		JWTTTL:             24 * time.Hour,
		AdminSignupEnabled: true,
		RateLimitPerMinute: 200,
		MaxUploadMB:        512,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envKeys maps environment variables onto koanf paths.
var envKeys = map[string]string{
	"GIN_MODE":              "environment",
	"PORT":                  "port",
	"DATABASE_URL":          "database_url",
	"JWT_SECRET":            "jwt_secret",
	"JWT_TTL":               "jwt_ttl",
	"ADMIN_SIGNUP_ENABLED":  "admin_signup_enabled",
	"ALLOWED_ORIGINS":       "allowed_origins",
	"RATE_LIMIT_PER_MINUTE": "rate_limit_per_minute",
	"MAX_UPLOAD_MB":         "max_upload_mb",
	"R2_ACCOUNT_ID":         "storage.account_id",
	"R2_ACCESS_KEY":         "storage.access_key",
	"R2_SECRET_KEY":         "storage.secret_key",
	"R2_BUCKET_NAME":        "storage.bucket_name",
	"R2_ENDPOINT":           "storage.endpoint",
	"R2_REGION":             "storage.region",
	"R2_PUBLIC_URL":         "storage.public_url",
	"STORAGE_ROOT_FOLDER":   "storage.root_folder",
	"LOG_LEVEL":             "log.level",
	"LOG_FORMAT":            "log.format",
	"AUTHZ_MODEL_PATH":      "authz.model_path",
	"AUTHZ_POLICY_PATH":     "authz.policy_path",
}

// Load reads .env (if present), then layers defaults, an optional YAML file
// and environment variables, in that order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitOrigins(k); err != nil {
		return nil, err
	}

	config := &Config{}
	if err := k.Unmarshal("", config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	config.applyDerived()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// envTransform drops variables that are not ours by returning "".
func envTransform(key string) string {
	return envKeys[key]
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// splitOrigins turns a comma separated ALLOWED_ORIGINS into a slice.
func splitOrigins(k *koanf.Koanf) error {
	raw, ok := k.Get("allowed_origins").(string)
	if !ok {
		return nil
	}

	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if err := k.Set("allowed_origins", origins); err != nil {
		return fmt.Errorf("failed to set allowed_origins: %w", err)
	}
	return nil
}

func (c *Config) applyDerived() {
	if c.Storage.Endpoint == "" && c.Storage.AccountID != "" {
		c.Storage.Endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.Storage.AccountID)
	}

	// Set public URL for R2
	if c.Storage.PublicURL == "" && c.Storage.Endpoint != "" && c.Storage.BucketName != "" {
		c.Storage.PublicURL = fmt.Sprintf("%s/%s", strings.TrimRight(c.Storage.Endpoint, "/"), c.Storage.BucketName)
	}
	c.Storage.PublicURL = strings.TrimRight(c.Storage.PublicURL, "/")
	c.Storage.RootFolder = strings.Trim(c.Storage.RootFolder, "/")
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}

	if c.Storage.Endpoint == "" || c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
		return ErrMissingStorageConfig
	}

	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}

	if c.JWTTTL <= 0 {
		return ErrInvalidJWTTTL
	}

	return nil
}

// MaxUploadBytes is the multipart memory limit handed to gin.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Configuration errors
var (
	ErrMissingDatabaseURL   = ConfigError{Message: "DATABASE_URL environment variable is required"}
	ErrMissingStorageConfig = ConfigError{Message: "object storage configuration (R2_ACCOUNT_ID or R2_ENDPOINT, R2_ACCESS_KEY, R2_SECRET_KEY) is required"}
	ErrMissingJWTSecret     = ConfigError{Message: "JWT_SECRET is required"}
	ErrInvalidJWTTTL        = ConfigError{Message: "JWT_TTL must be a positive duration"}
)

// ConfigError represents a configuration error
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
