package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env            string          `yaml:"env" env:"ENV" env-default:"local"`
	DatabaseUrl    string          `yaml:"database_url" env:"DATABASE_URL" env-required:"true"`
	FrontendOrigin string          `yaml:"frontend_origin" env:"FRONTEND_ORIGIN" env-default:"http://localhost:3000"`
	Server         ServerConfig    `yaml:"rest"`
	JWT            JWTConfig       `yaml:"jwt"`
	Scheduler      SchedulerConfig `yaml:"scheduler"`
	Auth           AuthConfig      `yaml:"auth"`
	Log            LogConfig       `yaml:"log"`
	SMTP           SMTPConfig      `yaml:"smtp"`
}

type ServerConfig struct {
	Port           string   `yaml:"port" env:"REST_PORT" env-default:"8080"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"REST_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
}

type JWTConfig struct {
	Secret     string        `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
	AccessTTL  time.Duration `yaml:"access_ttl" env:"JWT_ACCESS_TTL" env-default:"15m"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"JWT_REFRESH_TTL" env-default:"168h"`
}

type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"1m"`
}

type AuthConfig struct {
	AdminEmails []string `yaml:"admin_emails" env:"AUTH_ADMIN_EMAILS" env-separator:","`
}

type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB" env-default:"100"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"28"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"5"`
	Compress   bool   `yaml:"compress" env:"LOG_COMPRESS"`
}

// SMTPConfig enables real invitation delivery when Host is set.
type SMTPConfig struct {
	Host        string        `yaml:"host" env:"SMTP_HOST"`
	Port        int           `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username    string        `yaml:"username" env:"SMTP_USERNAME"`
	Password    string        `yaml:"password" env:"SMTP_PASSWORD"`
	From        string        `yaml:"from" env:"SMTP_FROM" env-default:"SurveySphere <no-reply@surveysphere.local>"`
	Connections int           `yaml:"connections" env:"SMTP_CONNECTIONS" env-default:"4"`
	SendTimeout time.Duration `yaml:"send_timeout" env:"SMTP_SEND_TIMEOUT" env-default:"10s"`
}

func MustLoad() *Config {
	path := fetchConfigPath()

	if path == "" {
		panic("Config file not found in path")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("Config file not found in path: " + path)
	}

	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the YAML file at path and applies environment overrides.
func Load(path string) (*Config, error) {
	var config Config
	log.Printf("Loading config from %s", path)
	if err := cleanenv.ReadConfig(path, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "config path")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	if res == "" {
		res = "./config/local.yaml"
	}

	return res
}
