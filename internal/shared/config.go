package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Privacy values accepted by YouTube Music when creating a playlist.
const (
	PrivacyPrivate  = "PRIVATE"
	PrivacyPublic   = "PUBLIC"
	PrivacyUnlisted = "UNLISTED"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Transfer    TransferConfig    `toml:"transfer"`
	Snapshot    SnapshotConfig    `toml:"snapshot"`
	Backup      BackupConfig      `toml:"backup"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// YouTubeConfig points at the ytmusicapi proxy and the browser headers it authenticates with.
type YouTubeConfig struct {
	ProxyURL    string `toml:"proxy_url"`
	HeadersPath string `toml:"headers_path"`
}

// TransferConfig holds the defaults for transfer commands. Flags override each field.
type TransferConfig struct {
	Algo          int           `toml:"algo"`
	TrackSleep    time.Duration `toml:"track_sleep"`
	DryRun        bool          `toml:"dry_run"`
	Reverse       bool          `toml:"reverse"`
	Privacy       string        `toml:"privacy"`
	MaxRetries    int           `toml:"max_retries"`
	Backoff       time.Duration `toml:"backoff"`
	Verify        bool          `toml:"verify"`
	VideoFallback bool          `toml:"video_fallback"`
	AlbumLookup   bool          `toml:"album_lookup"`
}

// SnapshotConfig locates playlists.json.
type SnapshotConfig struct {
	Path string `toml:"path"`
}

// BackupConfig tunes the concurrent Spotify backup.
type BackupConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"` // requests per second
}

// ServerConfig contains HTTP server settings for the OAuth callback.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys absent from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the transfer settings.
func (c *Config) Validate() error {
	t := c.Transfer
	if t.Algo < 0 || t.Algo > 2 {
		return fmt.Errorf("%w: transfer.algo must be 0, 1 or 2, got %d", ErrInvalidConfig, t.Algo)
	}
	if _, err := NormalizePrivacy(t.Privacy); err != nil {
		return fmt.Errorf("%w: transfer.privacy: %v", ErrInvalidConfig, err)
	}
	if t.MaxRetries < 1 {
		return fmt.Errorf("%w: transfer.max_retries must be at least 1", ErrInvalidConfig)
	}
	if t.TrackSleep < 0 || t.Backoff < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	return nil
}

// NormalizePrivacy upper-cases p and checks it against the accepted values. Empty means private.
func NormalizePrivacy(p string) (string, error) {
	switch v := strings.ToUpper(strings.TrimSpace(p)); v {
	case "":
		return PrivacyPrivate, nil
	case PrivacyPrivate, PrivacyPublic, PrivacyUnlisted:
		return v, nil
	default:
		return "", fmt.Errorf("%w: privacy %q", ErrInvalidArgument, p)
	}
}

// LoadEnv loads .env files into the process environment. Missing files are ignored.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides credentials and paths from S2YT_* environment variables.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	set(&c.Credentials.Spotify.ClientID, "S2YT_SPOTIFY_CLIENT_ID")
	set(&c.Credentials.Spotify.ClientSecret, "S2YT_SPOTIFY_CLIENT_SECRET")
	set(&c.Credentials.Spotify.RedirectURI, "S2YT_SPOTIFY_REDIRECT_URI")
	set(&c.Credentials.YouTube.ProxyURL, "S2YT_YTMUSIC_PROXY_URL")
	set(&c.Credentials.YouTube.HeadersPath, "S2YT_YTMUSIC_HEADERS_PATH")
	set(&c.Snapshot.Path, "S2YT_SNAPSHOT_PATH")
}
