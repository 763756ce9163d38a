package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"

	ImageStoreS3    = "s3"
	ImageStoreLocal = "local"
)

// Config is built once at startup and handed to every component that needs it
type Config struct {
	ServerPort         string
	JWTSecret          string
	JWTExpirationHours int64 // 0 issues tokens without expiry
	InitialAdminEmail  string
	CORSAllowedOrigins []string

	Store  StoreConfig
	Images ImageConfig
}

// StoreConfig selects and configures the backing store
type StoreConfig struct {
	Driver        string
	Postgres      *DBConfig
	MongoURI      string
	MongoDatabase string
}

// ImageConfig selects and configures where product images go
type ImageConfig struct {
	Driver        string
	UploadsDir    string
	PublicBaseURL string // prefix for URLs of locally stored images

	S3Bucket    string
	S3Region    string
	S3Endpoint  string // optional, for S3-compatible providers
	S3Prefix    string
	S3PublicURL string // optional, overrides the bucket URL in returned links
	AccessKeyID string
	SecretKey   string
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:        firstEnv("SERVER_PORT", "PORT"),
		JWTSecret:         firstEnv("JWT_SECRET_KEY", "JWT_SECRET"),
		InitialAdminEmail: strings.TrimSpace(os.Getenv("INITIAL_ADMIN_EMAIL")),
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "4000"
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY not set in environment")
	}

	if hours := os.Getenv("JWT_EXPIRATION_HOURS"); hours != "" {
		parsed, err := strconv.ParseInt(hours, 10, 64)
		if err != nil {
			log.Printf("Invalid JWT_EXPIRATION_HOURS, tokens will not expire: %v", err)
		} else {
			cfg.JWTExpirationHours = parsed
		}
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
			}
		}
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}
	cfg.Store = *store

	images, err := loadImageConfig()
	if err != nil {
		return nil, err
	}
	cfg.Images = *images

	return cfg, nil
}

func loadStoreConfig() (*StoreConfig, error) {
	sc := &StoreConfig{Driver: strings.ToLower(os.Getenv("STORE_DRIVER"))}
	if sc.Driver == "" {
		sc.Driver = StoreDriverPostgres
	}

	switch sc.Driver {
	case StoreDriverPostgres:
		dbCfg, err := LoadDBConfig()
		if err != nil {
			return nil, err
		}
		sc.Postgres = dbCfg
	case StoreDriverMongo:
		sc.MongoURI = firstEnv("MONGO_URI", "DB_URL")
		if sc.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI not set in environment")
		}
		sc.MongoDatabase = os.Getenv("MONGO_DATABASE")
		if sc.MongoDatabase == "" {
			sc.MongoDatabase = "shop"
		}
	case StoreDriverMemory:
		log.Println("Using in-memory store, data will not survive a restart")
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want postgres, mongo or memory)", sc.Driver)
	}
	return sc, nil
}

func loadImageConfig() (*ImageConfig, error) {
	ic := &ImageConfig{
		Driver:        strings.ToLower(os.Getenv("IMAGE_STORE")),
		UploadsDir:    os.Getenv("UPLOADS_DIR"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      firstEnv("S3_REGION", "AWS_REGION"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3Prefix:      os.Getenv("S3_PREFIX"),
		S3PublicURL:   strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),
		AccessKeyID:   os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey:     os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}
	if ic.Driver == "" {
		if ic.S3Bucket != "" {
			ic.Driver = ImageStoreS3
		} else {
			ic.Driver = ImageStoreLocal
		}
	}
	if ic.S3Prefix == "" {
		ic.S3Prefix = "products"
	}

	switch ic.Driver {
	case ImageStoreS3:
		if ic.S3Bucket == "" || ic.S3Region == "" {
			return nil, fmt.Errorf("image storage environment variables not set (S3_BUCKET, S3_REGION)")
		}
	case ImageStoreLocal:
		if ic.UploadsDir == "" {
			ic.UploadsDir = "uploads"
		}
	default:
		return nil, fmt.Errorf("unknown IMAGE_STORE %q (want s3 or local)", ic.Driver)
	}
	return ic, nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
