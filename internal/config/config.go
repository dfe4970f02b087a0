package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host        string   `yaml:"host"`
		Port        int      `yaml:"port"`
		Env         string   `yaml:"env"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // postgres, mysql, sqlite
		DSN    string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Storage struct {
		Type            string `yaml:"type"`      // local, s3, cloudflare_r2, gcs
		BasePath        string `yaml:"base_path"` // local only
		BaseURL         string `yaml:"base_url"`
		Bucket          string `yaml:"bucket"`
		Region          string `yaml:"region"`
		AccessKey       string `yaml:"access_key"`
		SecretKey       string `yaml:"secret_key"`
		Endpoint        string `yaml:"endpoint"`
		UseSSL          bool   `yaml:"use_ssl"`
		CredentialsFile string `yaml:"credentials_file"` // gcs only
	} `yaml:"storage"`

	Media struct {
		ThumbnailWidth  int    `yaml:"thumbnail_width"`
		ThumbnailHeight int    `yaml:"thumbnail_height"`
		MaxWidth        int    `yaml:"max_width"`
		StoragePrefix   string `yaml:"storage_prefix"`
		Quality         int    `yaml:"quality"`
		StagingDir      string `yaml:"staging_dir"`
		DeleteWorkers   int    `yaml:"delete_workers"`
		MaxUploadSize   int64  `yaml:"max_upload_size"`
		MaxPixels       int64  `yaml:"max_pixels"`
	} `yaml:"media"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Cart struct {
		LockBackend   string        `yaml:"lock_backend"` // memory, redis
		LockTTL       time.Duration `yaml:"lock_ttl"`
		CreateRetries int           `yaml:"create_retries"`
	} `yaml:"cart"`

	Robokassa struct {
		MerchantLogin string `yaml:"merchant_login"`
		Password1     string `yaml:"password1"`
		Password2     string `yaml:"password2"`
		BaseURL       string `yaml:"base_url"`
		Currency      string `yaml:"currency"`
		IsTest        bool   `yaml:"is_test"`
	} `yaml:"robokassa"`

	Workers struct {
		OrphanSweepInterval time.Duration `yaml:"orphan_sweep_interval"`
		OrphanGracePeriod   time.Duration `yaml:"orphan_grace_period"`
	} `yaml:"workers"`

	Admin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
}

var AppConfig *Config

// LoadConfig reads config.yaml, or builds the config from environment
// variables when DATABASE_URL is set (containers and tests).
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Load is LoadConfig without the global and without exiting.
func Load() (*Config, error) {
	var cfg Config

	if os.Getenv("DATABASE_URL") == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}
		if err := loadFile(configPath, &cfg); err != nil {
			return nil, err
		}
	} else {
		loadEnv(&cfg)
	}

	setDefaults(&cfg)
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) {
	cfg.Database.DSN = os.Getenv("DATABASE_URL")
	cfg.Database.Driver = os.Getenv("DATABASE_DRIVER")
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = strings.Split(origins, ",")
	}

	cfg.JWT.Secret = os.Getenv("JWT_SECRET")

	cfg.Storage.Type = os.Getenv("STORAGE_TYPE")
	cfg.Storage.BasePath = os.Getenv("STORAGE_BASE_PATH")
	cfg.Storage.Bucket = os.Getenv("STORAGE_BUCKET")
	cfg.Storage.Region = os.Getenv("STORAGE_REGION")
	cfg.Storage.AccessKey = os.Getenv("STORAGE_ACCESS_KEY")
	cfg.Storage.SecretKey = os.Getenv("STORAGE_SECRET_KEY")
	cfg.Storage.Endpoint = os.Getenv("STORAGE_ENDPOINT")

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Cart.LockBackend = os.Getenv("CART_LOCK_BACKEND")

	cfg.Robokassa.MerchantLogin = os.Getenv("ROBOKASSA_LOGIN")
	cfg.Robokassa.Password1 = os.Getenv("ROBOKASSA_PASSWORD1")
	cfg.Robokassa.Password2 = os.Getenv("ROBOKASSA_PASSWORD2")

	cfg.Admin.Email = os.Getenv("FIRST_ADMIN_EMAIL")
	cfg.Admin.Password = os.Getenv("FIRST_ADMIN_PASSWORD")
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 60
	}

	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = "./uploads"
	}
	if cfg.Storage.BaseURL == "" {
		cfg.Storage.BaseURL = "/api/v1/files"
	}

	if cfg.Media.ThumbnailWidth == 0 {
		cfg.Media.ThumbnailWidth = 300
	}
	if cfg.Media.ThumbnailHeight == 0 {
		cfg.Media.ThumbnailHeight = 300
	}
	if cfg.Media.MaxWidth == 0 {
		cfg.Media.MaxWidth = 1920
	}
	if cfg.Media.StoragePrefix == "" {
		cfg.Media.StoragePrefix = "pictures/"
	}
	if cfg.Media.Quality == 0 {
		cfg.Media.Quality = 85
	}
	if cfg.Media.StagingDir == "" {
		cfg.Media.StagingDir = os.TempDir()
	}
	if cfg.Media.DeleteWorkers == 0 {
		cfg.Media.DeleteWorkers = 4
	}
	if cfg.Media.MaxUploadSize == 0 {
		cfg.Media.MaxUploadSize = 10 * 1024 * 1024 // 10MB
	}
	if cfg.Media.MaxPixels == 0 {
		cfg.Media.MaxPixels = 40_000_000
	}

	if cfg.Cart.LockBackend == "" {
		cfg.Cart.LockBackend = "memory"
	}
	if cfg.Cart.LockTTL == 0 {
		cfg.Cart.LockTTL = 10 * time.Second
	}
	if cfg.Cart.CreateRetries == 0 {
		cfg.Cart.CreateRetries = 3
	}

	if cfg.Robokassa.BaseURL == "" {
		cfg.Robokassa.BaseURL = "https://auth.robokassa.ru/Merchant/Index.aspx"
	}
	if cfg.Robokassa.Currency == "" {
		cfg.Robokassa.Currency = "RUB"
	}

	if cfg.Workers.OrphanSweepInterval == 0 {
		cfg.Workers.OrphanSweepInterval = 6 * time.Hour
	}
	if cfg.Workers.OrphanGracePeriod == 0 {
		cfg.Workers.OrphanGracePeriod = 24 * time.Hour
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
