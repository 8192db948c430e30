package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type App struct {
	Port          string
	BasePath      string
	Development   bool
	MaxSize       int
	SessionTTL    time.Duration
	SweepInterval time.Duration
	TokenLifetime time.Duration

	// AllowedOrigins lists the browser origins served over CORS and websocket.
	// "*" allows any origin.
	AllowedOrigins []string
	WSWriteWait    time.Duration
	WSReadLimit    int64

	v *viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_port", ":8080")
	v.SetDefault("app_base_path", "")
	v.SetDefault("development", false)
	v.SetDefault("game_max_size", 50)
	v.SetDefault("session_ttl", time.Hour)
	v.SetDefault("session_sweep_interval", 5*time.Minute)
	v.SetDefault("jwt_token_lifetime", 24*time.Hour)
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("ws_write_wait", 10*time.Second)
	v.SetDefault("ws_read_limit", 4096)
}

// NewApp reads the configuration from the environment. Every key maps to the
// upper-cased env variable of the same name, e.g. game_max_size to
// GAME_MAX_SIZE.
func NewApp() (*App, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*App, error) {
	cfg := &App{
		Port:          v.GetString("app_port"),
		BasePath:      v.GetString("app_base_path"),
		Development:   v.GetBool("development"),
		MaxSize:       v.GetInt("game_max_size"),
		SessionTTL:    v.GetDuration("session_ttl"),
		SweepInterval: v.GetDuration("session_sweep_interval"),
		TokenLifetime: v.GetDuration("jwt_token_lifetime"),

		AllowedOrigins: v.GetStringSlice("allowed_origins"),
		WSWriteWait:    v.GetDuration("ws_write_wait"),
		WSReadLimit:    v.GetInt64("ws_read_limit"),

		v: v,
	}

	if cfg.MaxSize < 1 {
		return nil, fmt.Errorf("GAME_MAX_SIZE must be positive, got %d", cfg.MaxSize)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval)
	}

	if cfg.WSReadLimit < 1 {
		return nil, fmt.Errorf("WS_READ_LIMIT must be positive, got %d", cfg.WSReadLimit)
	}

	return cfg, nil
}

// AllowsOrigin reports whether a browser at origin may use the API.
func (c *App) AllowsOrigin(origin string) bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}
