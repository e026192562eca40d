// Package config provides configuration management for stampcam with Viper integration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// File permission constants
const (
	dirPerm  = 0755 // Standard directory permissions (rwxr-xr-x)
	filePerm = 0644 // Standard file permissions (rw-r--r--)
)

// Config represents the complete configuration for stampcam.
type Config struct {
	Camera   CameraConfig   `mapstructure:"camera" yaml:"camera"`
	Capture  CaptureConfig  `mapstructure:"capture" yaml:"capture"`
	Playback PlaybackConfig `mapstructure:"playback" yaml:"playback"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// CameraConfig describes the video source feeding the capture graphs.
type CameraConfig struct {
	Device    string `mapstructure:"device" yaml:"device"`
	Width     int    `mapstructure:"width" yaml:"width"`
	Height    int    `mapstructure:"height" yaml:"height"`
	Framerate int    `mapstructure:"framerate" yaml:"framerate"`
}

// CaptureConfig holds output locations and the capture tunables.
type CaptureConfig struct {
	PhotoDir string `mapstructure:"photo_dir" yaml:"photo_dir"`
	VideoDir string `mapstructure:"video_dir" yaml:"video_dir"`

	// PhotoPullTimeout bounds the synchronous wait for a still frame.
	PhotoPullTimeout time.Duration `mapstructure:"photo_pull_timeout" yaml:"photo_pull_timeout"`
	// StopFallbackTimeout is how long a graceful record stop may wait for
	// end-of-stream before the pipeline is forced down.
	StopFallbackTimeout time.Duration `mapstructure:"stop_fallback_timeout" yaml:"stop_fallback_timeout"`

	BitrateKbps int `mapstructure:"bitrate_kbps" yaml:"bitrate_kbps"`
}

// PlaybackConfig holds video-browser playback settings.
type PlaybackConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns the built-in defaults. Directory defaults resolve
// under the user home so they match where captures have always been written.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		Camera: CameraConfig{
			Device:    "/dev/video0",
			Width:     1920,
			Height:    1080,
			Framerate: 30,
		},
		Capture: CaptureConfig{
			PhotoDir:            filepath.Join(home, "Pictures"),
			VideoDir:            filepath.Join(home, "Videos"),
			PhotoPullTimeout:    time.Second,
			StopFallbackTimeout: 2 * time.Second,
			BitrateKbps:         8000,
		},
		Playback: PlaybackConfig{
			PollInterval: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Manager handles configuration loading and access.
type Manager struct {
	config *Config
	viper  *viper.Viper
	mu     sync.RWMutex
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	v := viper.New()

	// Configure Viper - supports yaml, json, toml automatically
	v.SetConfigName("config")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Current directory for development

	// Set up environment variable support
	v.SetEnvPrefix("STAMPCAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Manager{viper: v}, nil
}

// Load loads the configuration from file and environment variables.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setDefaults()

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file present: write one with the defaults so the
		// tunables are discoverable.
		if err := m.createDefaultConfig(); err != nil {
			return fmt.Errorf("failed to create default config: %w", err)
		}
	}

	cfg := &Config{}
	if err := m.viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	m.config = cfg
	return nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("camera.device", defaults.Camera.Device)
	m.viper.SetDefault("camera.width", defaults.Camera.Width)
	m.viper.SetDefault("camera.height", defaults.Camera.Height)
	m.viper.SetDefault("camera.framerate", defaults.Camera.Framerate)

	m.viper.SetDefault("capture.photo_dir", defaults.Capture.PhotoDir)
	m.viper.SetDefault("capture.video_dir", defaults.Capture.VideoDir)
	m.viper.SetDefault("capture.photo_pull_timeout", defaults.Capture.PhotoPullTimeout)
	m.viper.SetDefault("capture.stop_fallback_timeout", defaults.Capture.StopFallbackTimeout)
	m.viper.SetDefault("capture.bitrate_kbps", defaults.Capture.BitrateKbps)

	m.viper.SetDefault("playback.poll_interval", defaults.Playback.PollInterval)

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
}

// createDefaultConfig writes a default configuration file.
func (m *Manager) createDefaultConfig() error {
	configFile, err := GetConfigFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), dirPerm); err != nil {
		return err
	}

	if err := m.viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Global configuration manager instance
var (
	globalManager *Manager
	globalOnce    sync.Once
	globalErr     error
)

// Init initializes the global configuration manager and loads configuration.
func Init() error {
	globalOnce.Do(func() {
		globalManager, globalErr = NewManager()
		if globalErr != nil {
			return
		}
		globalErr = globalManager.Load()
	})
	return globalErr
}

// Get returns the global configuration, initializing it if necessary.
func Get() *Config {
	if err := Init(); err != nil {
		return DefaultConfig()
	}
	return globalManager.Get()
}
