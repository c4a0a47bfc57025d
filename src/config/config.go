package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Defaults suit local development against s3local and a local Postgres.
// Deployments override them with PORTAL_* environment variables or a .env file.
var Config = PortalConfig{
	Env:      Dev,
	Addr:     ":9001",
	BaseUrl:  "http://localhost:9001",
	LogLevel: zerolog.DebugLevel,
	Postgres: PostgresConfig{
		User:     "portal",
		Password: "password",
		Hostname: "localhost",
		Port:     5432,
		DbName:   "portal",
		LogLevel: tracelog.LogLevelWarn,
		MinConn:  2,
		MaxConn:  16,
	},
	Auth: AuthConfig{
		CookieDomain: "localhost",
		CookieSecure: false,
	},
	DocStore: DocStoreConfig{
		AccessKeyID:     "dummy",
		SecretAccessKey: "dummy",
		Region:          "dummy-region",
		Endpoint:        "http://localhost:9003",
		Bucket:          "portal-studio",
		Key:             "studio/state.json",
		UsePathStyle:    true,
	},
	S3Local: S3LocalConfig{
		Addr: ":9003",
		Dir:  "./tmp/s3",
	},
	Dev: DevConfig{
		LiveTemplates: true,
		SeedStudio:    true,
		RunLocalS3:    true,
	},
}

func init() {
	// This package sits below the logging package, so use zerolog's global logger.
	path := envFile()
	if err := loadEnvFile(path); err != nil {
		log.Error().Err(err).Str("file", path).Msg("failed to load env file")
	}
	ApplyEnv(&Config, os.LookupEnv)
}

// A missing env file is normal outside of development.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func envFile() string {
	if path, ok := os.LookupEnv("PORTAL_ENV_FILE"); ok {
		return path
	}
	return ".env"
}

// ApplyEnv overwrites fields of cfg from PORTAL_* variables. Unparseable
// values are ignored so that a typo falls back to the default instead of
// zeroing the field.
func ApplyEnv(cfg *PortalConfig, lookup func(string) (string, bool)) {
	str := func(name string, dest *string) {
		if v, ok := lookup(name); ok {
			*dest = v
		}
	}
	boolean := func(name string, dest *bool) {
		if v, ok := lookup(name); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dest = b
			}
		}
	}
	integer := func(name string, dest *int) {
		if v, ok := lookup(name); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dest = n
			}
		}
	}
	integer32 := func(name string, dest *int32) {
		if v, ok := lookup(name); ok {
			if n, err := strconv.ParseInt(v, 10, 32); err == nil {
				*dest = int32(n)
			}
		}
	}

	if v, ok := lookup("PORTAL_ENV"); ok {
		cfg.Env = Environment(strings.ToLower(v))
	}
	str("PORTAL_ADDR", &cfg.Addr)
	str("PORTAL_BASE_URL", &cfg.BaseUrl)
	if v, ok := lookup("PORTAL_LOG_LEVEL"); ok {
		if level, err := zerolog.ParseLevel(v); err == nil {
			cfg.LogLevel = level
		}
	}

	str("PORTAL_DB_USER", &cfg.Postgres.User)
	str("PORTAL_DB_PASSWORD", &cfg.Postgres.Password)
	str("PORTAL_DB_HOST", &cfg.Postgres.Hostname)
	integer("PORTAL_DB_PORT", &cfg.Postgres.Port)
	str("PORTAL_DB_NAME", &cfg.Postgres.DbName)
	if v, ok := lookup("PORTAL_DB_LOG_LEVEL"); ok {
		if level, err := tracelog.LogLevelFromString(v); err == nil {
			cfg.Postgres.LogLevel = level
		}
	}
	integer32("PORTAL_DB_MIN_CONN", &cfg.Postgres.MinConn)
	integer32("PORTAL_DB_MAX_CONN", &cfg.Postgres.MaxConn)

	str("PORTAL_COOKIE_DOMAIN", &cfg.Auth.CookieDomain)
	boolean("PORTAL_COOKIE_SECURE", &cfg.Auth.CookieSecure)

	str("PORTAL_DOCSTORE_ACCESS_KEY_ID", &cfg.DocStore.AccessKeyID)
	str("PORTAL_DOCSTORE_SECRET_ACCESS_KEY", &cfg.DocStore.SecretAccessKey)
	str("PORTAL_DOCSTORE_REGION", &cfg.DocStore.Region)
	str("PORTAL_DOCSTORE_ENDPOINT", &cfg.DocStore.Endpoint)
	str("PORTAL_DOCSTORE_BUCKET", &cfg.DocStore.Bucket)
	str("PORTAL_DOCSTORE_KEY", &cfg.DocStore.Key)
	boolean("PORTAL_DOCSTORE_PATH_STYLE", &cfg.DocStore.UsePathStyle)

	str("PORTAL_S3LOCAL_ADDR", &cfg.S3Local.Addr)
	str("PORTAL_S3LOCAL_DIR", &cfg.S3Local.Dir)

	boolean("PORTAL_LIVE_TEMPLATES", &cfg.Dev.LiveTemplates)
	boolean("PORTAL_SEED_STUDIO", &cfg.Dev.SeedStudio)
	boolean("PORTAL_RUN_LOCAL_S3", &cfg.Dev.RunLocalS3)
}
