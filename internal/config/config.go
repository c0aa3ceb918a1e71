package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/blackwell-systems/chapterdesk/internal/spotlight"
)

// Config is the top-level chapterdesk configuration.
type Config struct {
	DBPath     string     `mapstructure:"db_path"`
	ChapterID  string     `mapstructure:"chapter_id"`
	HTTP       HTTP       `mapstructure:"http"`
	Redis      Redis      `mapstructure:"redis"`
	Session    Session    `mapstructure:"session"`
	Spotlight  Spotlight  `mapstructure:"spotlight"`
	Dues       Dues       `mapstructure:"dues"`
	Pagination Pagination `mapstructure:"pagination"`
	Watch      Watch      `mapstructure:"watch"`
	Log        Log        `mapstructure:"log"`
}

// HTTP configures the API server.
type HTTP struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Redis configures the shared seed store. An empty Addr disables it.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Session configures the spotlight session cookie and seed lifetime.
type Session struct {
	TTL        time.Duration `mapstructure:"ttl"`
	CookieName string        `mapstructure:"cookie_name"`
}

// Spotlight tunes the networking spotlight ranking.
type Spotlight struct {
	Randomness          float64          `mapstructure:"randomness"`
	MinWithAvatar       int              `mapstructure:"min_with_avatar"`
	Desktop             SurfaceConfig    `mapstructure:"desktop"`
	Mobile              SurfaceConfig    `mapstructure:"mobile"`
	Weights             SpotlightWeights `mapstructure:"weights"`
	RecencyHalfLifeDays float64          `mapstructure:"recency_half_life_days"`
}

// SurfaceConfig sizes one spotlight surface.
type SurfaceConfig struct {
	Pool      int `mapstructure:"pool"`
	Display   int `mapstructure:"display"`
	Increment int `mapstructure:"increment"`
}

// SpotlightWeights blends the two priority components.
type SpotlightWeights struct {
	Completeness float64 `mapstructure:"completeness"`
	Recency      float64 `mapstructure:"recency"`
}

// Dues configures dues analytics.
type Dues struct {
	OverdueGraceDays int `mapstructure:"overdue_grace_days"`
}

// Pagination bounds list endpoints.
type Pagination struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// Watch configures the watch command.
type Watch struct {
	Interval time.Duration `mapstructure:"interval"`
	Notify   bool          `mapstructure:"notify"`
}

// Log configures the structured logger.
type Log struct {
	Format string `mapstructure:"format"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", filepath.Join(DefaultConfigDir, DefaultDBName))
	v.SetDefault("chapter_id", "")

	v.SetDefault("http.addr", DefaultHTTP.Addr)
	v.SetDefault("http.read_timeout", DefaultHTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", DefaultHTTP.WriteTimeout)
	v.SetDefault("http.shutdown_timeout", DefaultHTTP.ShutdownTimeout)

	v.SetDefault("redis.addr", DefaultRedis.Addr)
	v.SetDefault("redis.password", DefaultRedis.Password)
	v.SetDefault("redis.db", DefaultRedis.DB)
	v.SetDefault("redis.prefix", DefaultRedis.Prefix)

	v.SetDefault("session.ttl", DefaultSession.TTL)
	v.SetDefault("session.cookie_name", DefaultSession.CookieName)

	v.SetDefault("spotlight.randomness", DefaultSpotlight.Randomness)
	v.SetDefault("spotlight.min_with_avatar", DefaultSpotlight.MinWithAvatar)
	v.SetDefault("spotlight.desktop.pool", DefaultSpotlight.Desktop.Pool)
	v.SetDefault("spotlight.desktop.display", DefaultSpotlight.Desktop.Display)
	v.SetDefault("spotlight.desktop.increment", DefaultSpotlight.Desktop.Increment)
	v.SetDefault("spotlight.mobile.pool", DefaultSpotlight.Mobile.Pool)
	v.SetDefault("spotlight.mobile.display", DefaultSpotlight.Mobile.Display)
	v.SetDefault("spotlight.mobile.increment", DefaultSpotlight.Mobile.Increment)
	v.SetDefault("spotlight.weights.completeness", DefaultSpotlight.Weights.Completeness)
	v.SetDefault("spotlight.weights.recency", DefaultSpotlight.Weights.Recency)
	v.SetDefault("spotlight.recency_half_life_days", DefaultSpotlight.RecencyHalfLifeDays)

	v.SetDefault("dues.overdue_grace_days", DefaultDues.OverdueGraceDays)
	v.SetDefault("pagination.default_limit", DefaultPagination.DefaultLimit)
	v.SetDefault("pagination.max_limit", DefaultPagination.MaxLimit)
	v.SetDefault("watch.interval", DefaultWatch.Interval)
	v.SetDefault("watch.notify", DefaultWatch.Notify)
	v.SetDefault("log.format", DefaultLog.Format)
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. A .env file in the working
// directory is loaded first; CHAPTERDESK_* environment variables override
// file values.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.DBPath = expandPath(cfg.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the ranking and paging code cannot work with.
func (c *Config) Validate() error {
	if c.Spotlight.Randomness < 0 || c.Spotlight.Randomness > 1 {
		return fmt.Errorf("spotlight.randomness must be within [0, 1], got %v", c.Spotlight.Randomness)
	}
	for name, s := range map[string]SurfaceConfig{"desktop": c.Spotlight.Desktop, "mobile": c.Spotlight.Mobile} {
		if s.Pool <= 0 || s.Display <= 0 {
			return fmt.Errorf("spotlight.%s pool and display must be positive", name)
		}
	}
	if c.Pagination.DefaultLimit <= 0 || c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		return fmt.Errorf("pagination limits are inconsistent: default %d, max %d",
			c.Pagination.DefaultLimit, c.Pagination.MaxLimit)
	}
	if c.Dues.OverdueGraceDays < 0 {
		return fmt.Errorf("dues.overdue_grace_days must not be negative")
	}
	return nil
}

// Weights returns the spotlight priority weights.
func (c *Config) Weights() spotlight.Weights {
	return spotlight.Weights{
		Completeness:    c.Spotlight.Weights.Completeness,
		Recency:         c.Spotlight.Weights.Recency,
		RecencyHalfLife: c.Spotlight.RecencyHalfLifeDays,
	}
}

// Surface returns the configured spotlight surface by name. Unknown names
// get the desktop surface.
func (c *Config) Surface(name string) spotlight.Surface {
	if name == spotlight.Mobile.Name {
		m := c.Spotlight.Mobile
		return spotlight.Surface{Name: spotlight.Mobile.Name, Pool: m.Pool, Display: m.Display, Increment: m.Increment}
	}
	d := c.Spotlight.Desktop
	return spotlight.Surface{Name: spotlight.Desktop.Name, Pool: d.Pool, Display: d.Display, Increment: d.Increment}
}

// DBPath returns the default path to the SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
