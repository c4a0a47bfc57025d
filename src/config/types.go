package config

import (
	"fmt"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

type Environment string

const (
	Live Environment = "live"
	Beta Environment = "beta"
	Dev  Environment = "dev"
)

type PortalConfig struct {
	Env      Environment
	Addr     string
	BaseUrl  string
	LogLevel zerolog.Level
	Postgres PostgresConfig
	Auth     AuthConfig
	DocStore DocStoreConfig
	S3Local  S3LocalConfig
	Dev      DevConfig
}

type PostgresConfig struct {
	User     string
	Password string
	Hostname string
	Port     int
	DbName   string
	LogLevel tracelog.LogLevel
	MinConn  int32
	MaxConn  int32
}

func (info PostgresConfig) DSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s", info.User, info.Password, info.Hostname, info.Port, info.DbName)
}

type AuthConfig struct {
	CookieDomain string
	CookieSecure bool
}

// Where the studio's authoring document lives. An empty Bucket keeps the
// document in memory only.
type DocStoreConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string
	Bucket          string
	Key             string
	UsePathStyle    bool
}

type S3LocalConfig struct {
	Addr string
	Dir  string
}

type DevConfig struct {
	LiveTemplates bool // load templates from disk on every request
	SeedStudio    bool // start the studio from the sample catalog when nothing is persisted
	RunLocalS3    bool // serve the docstore bucket from S3Local.Dir inside the website process
}
