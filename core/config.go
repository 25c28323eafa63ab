package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		AppName  string

		// SecretKey signs session tokens. Never a literal at call sites;
		// always supplied via the environment in non-DEV envs.
		SecretKey []byte

		DefaultFromEmail mail.Address
		FrontendBaseURL  string
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		Uploads  UploadsConfig
	}

	ServerConfig struct {
		Host               string
		Port               string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		URI  string
		Name string
	}

	UploadsConfig struct {
		Dir string
	}
)

func (c ServerConfig) Address() string { return c.Host + ":" + c.Port }

// NewConfig loads the app configuration: viper defaults, an optional
// `config/.env.<env>` file, then the environment itself.
func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Elearning")
	conf.SetDefault("secretKey", "xanh-duong-local-only-&2y$12$xTz")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("host", "")
	conf.SetDefault("port", "5000")
	conf.SetDefault("shutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 8*time.Hour)
	conf.SetDefault("databaseURI", "mongodb://localhost:27017")
	conf.SetDefault("databaseName", "elearning")
	conf.SetDefault("uploadsDir", filepath.Join("uploads", "images"))

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		Env:              env,
		AppName:          conf.GetString("appName"),
		SecretKey:        []byte(conf.GetString("secretKey")),
		DefaultFromEmail: mail.Address{Address: conf.GetString("defaultFromEmail")},
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               conf.GetString("host"),
			Port:               conf.GetString("port"),
			ShutdownTimeout:    conf.GetDuration("shutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			URI:  conf.GetString("databaseURI"),
			Name: conf.GetString("databaseName"),
		},
		Uploads: UploadsConfig{
			Dir: conf.GetString("uploadsDir"),
		},
	}
}
