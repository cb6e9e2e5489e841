package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFilename    = "config.yaml"
	DownloadsDirEnvVar = "PANPUP_DOWNLOADS_DIR"
)

type Config struct {
	Server    Server    `yaml:"server"`
	Downloads Downloads `yaml:"downloads"`
	YTDLP     YTDLP     `yaml:"ytdlp"`
	Cache     Cache     `yaml:"cache"`
	Log       Log       `yaml:"log"`
}

func (c *Config) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Dict("server", c.Server.ToDict()).
		Dict("downloads", c.Downloads.ToDict()).
		Dict("ytdlp", c.YTDLP.ToDict()).
		Dict("cache", c.Cache.ToDict()).
		Dict("log", c.Log.ToDict())
}

func (c *Config) setDefaults() {
	c.Server.setDefaults()
	c.Downloads.setDefaults()
	c.YTDLP.setDefaults()
	c.Cache.setDefaults()
	c.Log.setDefaults()
}

func (c *Config) validate() error {
	if err := c.Server.validate(); nil != err {
		return fmt.Errorf("server config validation failed: %v", err)
	}

	if err := c.Downloads.validate(); nil != err {
		return fmt.Errorf("downloads config validation failed: %v", err)
	}

	if err := c.YTDLP.validate(); nil != err {
		return fmt.Errorf("ytdlp config validation failed: %v", err)
	}

	if err := c.Cache.validate(); nil != err {
		return fmt.Errorf("cache config validation failed: %v", err)
	}

	if err := c.Log.validate(); nil != err {
		return fmt.Errorf("log config validation failed: %v", err)
	}

	return nil
}

type Server struct {
	Bind                 string `yaml:"bind"`
	FrontendDir          string `yaml:"frontend_dir"`
	MaxBatchSize         int    `yaml:"max_batch_size"`
	MaxConcurrentBatches int    `yaml:"max_concurrent_batches"`
}

func (c *Server) ToDict() *zerolog.Event {
	return zerolog.
		Dict().
		Str("bind", c.Bind).
		Str("frontend_dir", c.FrontendDir).
		Int("max_batch_size", c.MaxBatchSize).
		Int("max_concurrent_batches", c.MaxConcurrentBatches)
}

func (c *Server) setDefaults() {
	if c.Bind == "" {
		c.Bind = "0.0.0.0:3000"
	}

	if c.FrontendDir == "" {
		c.FrontendDir = "frontend"
	}

	if c.MaxBatchSize == 0 {
		c.MaxBatchSize = 50
	}

	if c.MaxConcurrentBatches == 0 {
		c.MaxConcurrentBatches = 1
	}
}

func (c *Server) validate() error {
	if strings.TrimSpace(c.Bind) == "" {
		return errors.New("bind is required")
	}

	if c.MaxBatchSize < 0 {
		return errors.New("max_batch_size must be greater than 0")
	}

	if c.MaxConcurrentBatches < 0 {
		return errors.New("max_concurrent_batches must be greater than 0")
	}

	return nil
}

type Downloads struct {
	Dir string `yaml:"dir"`
}

func (c *Downloads) ToDict() *zerolog.Event {
	return zerolog.
		Dict().
		Str("dir", c.Dir)
}

func (c *Downloads) setDefaults() {
	if c.Dir == "" {
		c.Dir = "./downloads"
	}
}

// The directory is created on demand, so only its shape is checked here.
func (c *Downloads) validate() error {
	if i, err := os.Stat(c.Dir); nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("failed to stat dir: %v", err)
	} else if !i.IsDir() {
		return errors.New("dir must be a directory")
	}

	return nil
}

var audioFormats = []string{"best", "aac", "alac", "flac", "m4a", "mp3", "opus", "vorbis", "wav"}

type YTDLP struct {
	Binary         string        `yaml:"binary"`
	AudioFormat    string        `yaml:"audio_format"`
	AudioQuality   string        `yaml:"audio_quality"`
	OutputTemplate string        `yaml:"output_template"`
	AddMetadata    *bool         `yaml:"add_metadata"`
	EmbedThumbnail *bool         `yaml:"embed_thumbnail"`
	Timeouts       YTDLPTimeouts `yaml:"timeouts"`
}

func (c *YTDLP) ToDict() *zerolog.Event {
	return zerolog.
		Dict().
		Str("binary", c.Binary).
		Str("audio_format", c.AudioFormat).
		Str("audio_quality", c.AudioQuality).
		Str("output_template", c.OutputTemplate).
		Bool("add_metadata", c.ShouldAddMetadata()).
		Bool("embed_thumbnail", c.ShouldEmbedThumbnail()).
		Dict("timeouts", c.Timeouts.ToDict())
}

func (c *YTDLP) ShouldAddMetadata() bool {
	return nil == c.AddMetadata || *c.AddMetadata
}

func (c *YTDLP) ShouldEmbedThumbnail() bool {
	return nil == c.EmbedThumbnail || *c.EmbedThumbnail
}

func (c *YTDLP) setDefaults() {
	if c.Binary == "" {
		c.Binary = "yt-dlp"
	}

	if c.AudioFormat == "" {
		c.AudioFormat = "mp3"
	}

	if c.AudioQuality == "" {
		c.AudioQuality = "0"
	}

	if c.OutputTemplate == "" {
		c.OutputTemplate = "%(artist)s - %(title)s.%(ext)s"
	}

	c.Timeouts.setDefaults()
}

func (c *YTDLP) validate() error {
	if strings.TrimSpace(c.Binary) == "" {
		return errors.New("binary is required")
	}

	if !slices.Contains(audioFormats, c.AudioFormat) {
		return fmt.Errorf("audio_format must be one of: %s, got: %s", strings.Join(audioFormats, ", "), c.AudioFormat)
	}

	if strings.ContainsAny(c.OutputTemplate, `/\`) {
		return errors.New("output_template must be a file name, not a path")
	}

	if err := c.Timeouts.validate(); nil != err {
		return fmt.Errorf("timeouts config validation failed: %v", err)
	}

	return nil
}

// Values are in seconds.
type YTDLPTimeouts struct {
	Parse    int `yaml:"parse"`
	Fallback int `yaml:"fallback"`
	Download int `yaml:"download"`
	Version  int `yaml:"version"`
}

func (c *YTDLPTimeouts) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Int("parse", c.Parse).
		Int("fallback", c.Fallback).
		Int("download", c.Download).
		Int("version", c.Version)
}

func (c *YTDLPTimeouts) setDefaults() {
	if c.Parse == 0 {
		c.Parse = 60
	}

	if c.Fallback == 0 {
		c.Fallback = 30
	}

	if c.Download == 0 {
		c.Download = 300
	}

	if c.Version == 0 {
		c.Version = 5
	}
}

func (c *YTDLPTimeouts) validate() error {
	if c.Parse < 0 {
		return errors.New("parse must be greater than 0")
	}

	if c.Fallback < 0 {
		return errors.New("fallback must be greater than 0")
	}

	if c.Download < 0 {
		return errors.New("download must be greater than 0")
	}

	if c.Version < 0 {
		return errors.New("version must be greater than 0")
	}

	return nil
}

func (c YTDLPTimeouts) ParseDuration() time.Duration {
	return time.Duration(c.Parse) * time.Second
}

func (c YTDLPTimeouts) FallbackDuration() time.Duration {
	return time.Duration(c.Fallback) * time.Second
}

func (c YTDLPTimeouts) DownloadDuration() time.Duration {
	return time.Duration(c.Download) * time.Second
}

func (c YTDLPTimeouts) VersionDuration() time.Duration {
	return time.Duration(c.Version) * time.Second
}

type Cache struct {
	// Seconds a successful parse outcome is reused for. Zero disables the cache.
	ParseTTL int `yaml:"parse_ttl"`
	MaxSize  int `yaml:"max_size"`
}

func (c *Cache) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Int("parse_ttl", c.ParseTTL).
		Int("max_size", c.MaxSize)
}

func (c *Cache) setDefaults() {
	if c.MaxSize == 0 {
		c.MaxSize = 100
	}
}

func (c *Cache) validate() error {
	if c.ParseTTL < 0 {
		return errors.New("parse_ttl must not be negative")
	}

	if c.MaxSize < 0 {
		return errors.New("max_size must be greater than 0")
	}

	return nil
}

func (c Cache) Enabled() bool {
	return c.ParseTTL > 0
}

func (c Cache) ParseTTLDuration() time.Duration {
	return time.Duration(c.ParseTTL) * time.Second
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Log) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("level", c.Level).
		Str("format", c.Format)
}

func (c *Log) setDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}

	if c.Format == "" {
		c.Format = "pretty"
	}
}

func (c *Log) validate() error {
	if !slices.Contains([]string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}, c.Level) {
		return fmt.Errorf(
			"level must be one of: trace, debug, info, warn, error, fatal, panic, got: %s",
			c.Level,
		)
	}

	if !slices.Contains([]string{"json", "pretty", "auto"}, c.Format) {
		return fmt.Errorf("format must be 'json', 'pretty', or 'auto', got: %s", c.Format)
	}

	return nil
}

// Default returns a configuration built purely from defaults.
func Default() *Config {
	var conf Config
	conf.setDefaults()

	return &conf
}

// Load reads filename, or config.yaml when filename is empty. A missing
// config.yaml is not an error; a missing explicitly named file is.
func Load(filename string) (*Config, error) {
	path := lo.Ternary(len(filename) > 0, filename, DefaultFilename)

	var conf Config
	data, err := os.ReadFile(path)
	if nil != err {
		if len(filename) > 0 || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %v", path, err)
		}
	} else if err := yaml.Unmarshal(data, &conf); nil != err {
		return nil, fmt.Errorf("failed to parse config file %s: %v", path, err)
	}

	if dir := strings.TrimSpace(os.Getenv(DownloadsDirEnvVar)); len(dir) > 0 {
		conf.Downloads.Dir = dir
	}
	conf.setDefaults()

	if err := conf.validate(); nil != err {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	return &conf, nil
}
