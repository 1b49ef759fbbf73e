package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

var ErrMissingJwtSecret = errors.New("jwt secret is not configured")

type Application struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Frontend Frontend `koanf:"frontend"`
	Google   Google   `koanf:"google"`
	Jwt      Jwt      `koanf:"jwt"`
	Database Database `koanf:"db"`
}

type Frontend struct {
	// Url is where the browser lands after a successful login, with ?token=<JWT> appended.
	Url            string   `koanf:"url"`
	Enabled        bool     `koanf:"enabled"`
	AllowedOrigins []string `koanf:"allowedorigins"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
	// CalendarEndpoint overrides the Calendar API base URL. Empty means Google's default.
	CalendarEndpoint string `koanf:"calendarendpoint"`
}

type Jwt struct {
	Secret string        `koanf:"secret"`
	Expiry time.Duration `koanf:"expiry"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// legacyEnv maps the bare variable names of the first deployment to config keys.
var legacyEnv = map[string]string{
	"CLIENT_ID":     "google.clientid",
	"CLIENT_SECRET": "google.clientsecret",
	"JWT_SECRET":    "jwt.secret",
	"PORT":          "port",
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:3000",
		Port: 3000,
		Frontend: Frontend{
			Url:            "https://oauth-test-vjge.onrender.com/",
			Enabled:        true,
			AllowedOrigins: []string{"https://oauth-test-vjge.onrender.com", "http://localhost:4200"},
		},
		Jwt: Jwt{
			Expiry: time.Hour,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "calgate",
			Pass:   "",
			Name:   "calgate",
			Schema: "calgate",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			if v == "" {
				return "", nil
			}
			return legacyEnv[k], v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from legacy envs: %v", err)
		return Application{}, err
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "CALGATE_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "CALGATE_")), "_", ".")
			if k == "frontend.allowedorigins" {
				return k, strings.Split(v, ",")
			}
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	if app.Jwt.Secret == "" {
		return Application{}, ErrMissingJwtSecret
	}

	return app, nil
}
