package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	HttpPort        int           `yaml:"http_port" validate:"required,min=1,max=65535"`
	LogLevel        string        `yaml:"log_level"`
	LogJSON         bool          `yaml:"log_json"`
	Storage         string        `yaml:"storage" validate:"required,oneof=postgres memory"`
	ThreadsPerPage  int           `yaml:"threads_per_page" validate:"required,min=1"` // default thread limit of board listing
	RepliesPreview  int           `yaml:"replies_preview" validate:"required,min=1"`  // replies shown per thread in board listing
	MaxListLimit    int           `yaml:"max_list_limit" validate:"required,min=1"`
	BcryptCost      int           `yaml:"bcrypt_cost" validate:"required,min=4,max=31"`
	MaxHashers      int64         `yaml:"max_concurrent_hashes" validate:"min=0"` // 0 means runtime.NumCPU()
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"required"`
	SecureCookies   bool          `yaml:"secure_cookies"`
	AllowedOrigins  []string      `yaml:"cors_allowed_origins"`
	PostsPerMinute  float64       `yaml:"post_rate_per_minute" validate:"required,gt=0"`
	TrustProxy      bool          `yaml:"trust_proxy_headers"` // take client ip from X-Real-IP / X-Forwarded-For
	EnableDeleteAll bool          `yaml:"enable_delete_all"`
	OperatorTTL     time.Duration `yaml:"operator_token_ttl"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

type Private struct {
	Pg     Pg     `yaml:"pg"`
	JwtKey string `yaml:"jwt_key"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) OperatorTTL() time.Duration {
	if c.Public.OperatorTTL <= 0 {
		return time.Hour
	}
	return c.Public.OperatorTTL
}

// Validate checks required fields. Postgres credentials and the jwt key are
// only required when the features that use them are enabled.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c.Public); err != nil {
		return fmt.Errorf("public config: %w", err)
	}
	if c.Public.Storage == StoragePostgres {
		if err := validate.Struct(c.Private.Pg); err != nil {
			return fmt.Errorf("pg config: %w", err)
		}
	}
	if c.Public.EnableDeleteAll && c.Private.JwtKey == "" {
		return fmt.Errorf("jwt_key is required when enable_delete_all is set")
	}
	return nil
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}
