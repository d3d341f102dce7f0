package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/resonance/internal/recommend"
)

type Config struct {
	LogLevel string `koanf:"log_level"` // "debug", "info", "warn", "error" (default: "warn")
	LogDir   string `koanf:"log_dir"`   // write logs to a dated file here instead of stderr

	LibrarySources []string `koanf:"library_sources"` // paths to scan, registered on first run

	Database DatabaseConfig `koanf:"database"`

	// Last.fm suggestions (enables hybrid mode when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`

	Recommend RecommendConfig `koanf:"recommend"`
}

// DatabaseConfig holds the location of the library database.
type DatabaseConfig struct {
	Path string `koanf:"path"` // empty means the XDG data dir
}

// LastfmConfig holds Last.fm API credentials.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// WeightsConfig overrides the similarity factor weights.
// Unset fields keep their default.
type WeightsConfig struct {
	Artist *float64 `koanf:"artist"`
	Album  *float64 `koanf:"album"`
	Genre  *float64 `koanf:"genre"`
	Year   *float64 `koanf:"year"`
	Tempo  *float64 `koanf:"tempo"`
	Key    *float64 `koanf:"key"`
}

// RecommendConfig holds recommendation defaults and the external source settings.
type RecommendConfig struct {
	Limit                int           `koanf:"limit"`                  // Results per query (1-50, default: 10)
	MinScore             float64       `koanf:"min_score"`              // Minimum similarity (0.0-1.0, default: 0)
	Diversity            float64       `koanf:"diversity"`              // Re-ranking strength (0.0-1.0, default: 0)
	Weights              WeightsConfig `koanf:"weights"`                // Factor weight overrides
	CacheTTLDays         int           `koanf:"cache_ttl_days"`         // Last.fm cache TTL in days (default: 7)
	ArtistMatchThreshold float64       `koanf:"artist_match_threshold"` // Fuzzy match threshold (0.0-1.0, default: 0.8)
	SimilarArtists       int           `koanf:"similar_artists"`        // Similar artists requested from Last.fm (default: 50)
	FetchTimeoutSeconds  int           `koanf:"fetch_timeout_seconds"`  // Timeout for one external fetch (default: 10)
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom loads the given config files in order, later files winning.
// Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in paths
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.LogDir = expandPath(cfg.LogDir)
	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/resonance/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "resonance", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm suggestions are configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// GetRecommendConfig returns the recommendation configuration with defaults applied.
func (c *Config) GetRecommendConfig() RecommendConfig {
	cfg := c.Recommend

	// Apply defaults
	if cfg.Limit <= 0 || cfg.Limit > recommend.MaxLimit {
		cfg.Limit = recommend.DefaultLimit
	}
	if cfg.MinScore < 0 || cfg.MinScore > 1 {
		cfg.MinScore = 0
	}
	if cfg.Diversity < 0 || cfg.Diversity > 1 {
		cfg.Diversity = 0
	}
	if cfg.CacheTTLDays <= 0 {
		cfg.CacheTTLDays = 7
	}
	if cfg.ArtistMatchThreshold <= 0 || cfg.ArtistMatchThreshold > 1 {
		cfg.ArtistMatchThreshold = 0.8
	}
	if cfg.SimilarArtists <= 0 {
		cfg.SimilarArtists = 50
	}
	if cfg.FetchTimeoutSeconds <= 0 {
		cfg.FetchTimeoutSeconds = 10
	}

	return cfg
}

// Options converts the configuration into per-call recommendation options.
// Weights is nil unless at least one weight was overridden.
func (r RecommendConfig) Options() recommend.Options {
	opts := recommend.Options{
		Limit:     r.Limit,
		MinScore:  r.MinScore,
		Diversity: r.Diversity,
	}
	if w, ok := r.Weights.apply(recommend.DefaultWeights()); ok {
		opts.Weights = &w
	}
	return opts
}

func (wc WeightsConfig) apply(w recommend.Weights) (recommend.Weights, bool) {
	overridden := false
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
			overridden = true
		}
	}
	set(&w.Artist, wc.Artist)
	set(&w.Album, wc.Album)
	set(&w.Genre, wc.Genre)
	set(&w.Year, wc.Year)
	set(&w.Tempo, wc.Tempo)
	set(&w.Key, wc.Key)
	return w, overridden
}
