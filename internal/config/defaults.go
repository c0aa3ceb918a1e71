// Package config provides configuration loading and defaults for chapterdesk.
package config

import "time"

// DefaultConfigDir is the default location for chapterdesk configuration.
const DefaultConfigDir = "~/.config/chapterdesk"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "chapterdesk.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// EnvPrefix prefixes every environment override, e.g. CHAPTERDESK_HTTP_ADDR.
const EnvPrefix = "CHAPTERDESK"

// DefaultHTTP holds the default API server settings.
var DefaultHTTP = HTTP{
	Addr:            ":8080",
	ReadTimeout:     10 * time.Second,
	WriteTimeout:    15 * time.Second,
	ShutdownTimeout: 10 * time.Second,
}

// DefaultRedis leaves Addr empty, which selects the in-memory seed store.
var DefaultRedis = Redis{
	Prefix: "chapterdesk",
}

// DefaultSession holds the default session cookie settings.
var DefaultSession = Session{
	TTL:        24 * time.Hour,
	CookieName: "chapterdesk_session",
}

// DefaultSpotlight mirrors the dashboard surfaces: five cards on desktop,
// up to 24 on mobile loaded six at a time.
var DefaultSpotlight = Spotlight{
	Randomness:    0.4,
	MinWithAvatar: 5,
	Desktop:       SurfaceConfig{Pool: 20, Display: 5, Increment: 5},
	Mobile:        SurfaceConfig{Pool: 30, Display: 24, Increment: 6},
	Weights: SpotlightWeights{
		Completeness: 0.6,
		Recency:      0.4,
	},
	RecencyHalfLifeDays: 30,
}

// DefaultDues holds the default dues settings.
var DefaultDues = Dues{
	OverdueGraceDays: 7,
}

// DefaultPagination holds the default list paging limits.
var DefaultPagination = Pagination{
	DefaultLimit: 20,
	MaxLimit:     100,
}

// DefaultWatch holds the default watcher settings.
var DefaultWatch = Watch{
	Interval: 5 * time.Minute,
}

// DefaultLog picks text on a terminal and JSON otherwise.
var DefaultLog = Log{
	Format: "auto",
}
