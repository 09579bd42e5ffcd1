// Package config loads stravadash settings from an optional YAML file and the
// environment. A .env file in the working directory is loaded first.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload"

	"stravadash/clients/strava"
	"stravadash/internal/services"
)

// Config sources, highest priority first:
//  1. explicit path passed to Load;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. environment only.
//
// Environment variables override values read from a file.
type Config struct {
	Env       string          `yaml:"env"       env:"ENV"       env-default:"local"`
	LogLevel  string          `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	HTTP      HTTPConfig      `yaml:"http"`
	SSH       SSHConfig       `yaml:"ssh"`
	DB        DBConfig        `yaml:"db"`
	Strava    StravaConfig    `yaml:"strava"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"PORT"      env-default:"8080"`
}

func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

type SSHConfig struct {
	Host        string `yaml:"host"          env:"SSH_HOST"          env-default:"0.0.0.0"`
	Port        string `yaml:"port"          env:"SSH_PORT"          env-default:"23234"`
	HostKeyPath string `yaml:"host_key_path" env:"SSH_HOST_KEY_PATH" env-default:".ssh/id_ed25519"`
}

func (s SSHConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

type DBConfig struct {
	URL string `yaml:"url" env:"DB_URL" env-default:"stravadash.db"`
}

// StravaConfig has no defaults for credentials; they must be injected.
type StravaConfig struct {
	AccessToken  string   `yaml:"access_token"  env:"STRAVA_ACCESS_TOKEN"`
	ClientID     string   `yaml:"client_id"     env:"STRAVA_CLIENT_ID"`
	ClientSecret string   `yaml:"client_secret" env:"STRAVA_CLIENT_SECRET"`
	RedirectURL  string   `yaml:"redirect_url"  env:"STRAVA_REDIRECT_URL"`
	Scopes       []string `yaml:"scopes"        env:"STRAVA_SCOPES"        env-separator:"," env-default:"read,activity:read_all,profile:read_all"`
	APIURL       string   `yaml:"api_url"       env:"STRAVA_API_URL"`
	AuthURL      string   `yaml:"auth_url"      env:"STRAVA_AUTH_URL"`
	TokenURL     string   `yaml:"token_url"     env:"STRAVA_TOKEN_URL"`
}

// DirectTokenEnabled reports whether the fixed bearer token flow is usable.
func (s StravaConfig) DirectTokenEnabled() bool {
	return s.AccessToken != ""
}

// OAuthEnabled reports whether the authorization code flow is usable.
func (s StravaConfig) OAuthEnabled() bool {
	return s.ClientID != "" && s.ClientSecret != "" && s.RedirectURL != ""
}

func (s StravaConfig) DirectToken() strava.Token {
	return strava.Token{AccessToken: s.AccessToken}
}

func (s StravaConfig) OAuth() strava.OAuthConfig {
	return strava.OAuthConfig{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURL:  s.RedirectURL,
		Scopes:       s.Scopes,
		AuthURL:      s.AuthURL,
		TokenURL:     s.TokenURL,
	}
}

type DashboardConfig struct {
	WeeklyGoalKm    float64       `yaml:"weekly_goal_km"    env:"WEEKLY_GOAL_KM"      env-default:"100"`
	PerPage         int           `yaml:"per_page"          env:"ACTIVITIES_PER_PAGE" env-default:"50"`
	Pages           int           `yaml:"pages"             env:"ACTIVITY_PAGES"      env-default:"2"`
	RecentLimit     int           `yaml:"recent_limit"      env:"RECENT_ACTIVITIES"   env-default:"10"`
	RefreshInterval time.Duration `yaml:"refresh_interval"  env:"REFRESH_INTERVAL"    env-default:"5m"`
}

func (d DashboardConfig) Options() services.DashboardOptions {
	return services.DashboardOptions{
		PerPage:      d.PerPage,
		Pages:        d.Pages,
		RecentLimit:  d.RecentLimit,
		WeeklyGoalKm: d.WeeklyGoalKm,
	}
}

var ErrNoFlow = errors.New("neither STRAVA_ACCESS_TOKEN nor STRAVA_CLIENT_ID/STRAVA_CLIENT_SECRET/STRAVA_REDIRECT_URL are set")

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file does not exist: %s", p)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	}

	switch {
	case path != "":
		if err := readFile(path); err != nil {
			return nil, err
		}
	case os.Getenv("CONFIG_PATH") != "":
		if err := readFile(os.Getenv("CONFIG_PATH")); err != nil {
			return nil, err
		}
	default:
		if _, err := os.Stat("local.yaml"); err == nil {
			if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
				return nil, fmt.Errorf("failed to read local.yaml: %w", err)
			}
		} else if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if !c.Strava.DirectTokenEnabled() && !c.Strava.OAuthEnabled() {
		return ErrNoFlow
	}
	if c.Dashboard.WeeklyGoalKm <= 0 {
		return fmt.Errorf("dashboard.weekly_goal_km must be > 0")
	}
	if c.Dashboard.PerPage <= 0 || c.Dashboard.PerPage > 200 {
		return fmt.Errorf("dashboard.per_page must be between 1 and 200")
	}
	if c.Dashboard.Pages <= 0 {
		return fmt.Errorf("dashboard.pages must be > 0")
	}
	if c.Dashboard.RecentLimit <= 0 {
		return fmt.Errorf("dashboard.recent_limit must be > 0")
	}
	if c.Dashboard.RefreshInterval < time.Minute {
		return fmt.Errorf("dashboard.refresh_interval must be at least 1m")
	}
	return nil
}
