// Package config provides startup configuration for the flying stereo
// camera adapter. Values come from an optional YAML file, then FLYCAM_*
// environment variables, then command line flags in cmd/.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultPlanningFrame   = "dr_origin"
	DefaultCameraFrame     = "cam_pos"
	DefaultModelName       = "flying_stereo_cam"
	DefaultCapturePattern  = "capture_set_%d"
	DefaultListenAddr      = ":8088"
	DefaultSimulatorURL    = "http://localhost:11345/gazebo"
	DefaultRetrieverURL    = "http://localhost:8090/stereo"
	DefaultSettleDuration  = time.Second
	DefaultPublishInterval = 50 * time.Millisecond
)

// ErrMissing is wrapped by Validate for each required value that is unset.
var ErrMissing = errors.New("config: required value missing")

// Config holds the values read once at startup.
type Config struct {
	// PlanningFrame names the reference frame all poses are expressed in.
	PlanningFrame string `yaml:"planning_frame"`

	// CameraFrame is the child frame name used for the published transform.
	CameraFrame string `yaml:"camera_frame"`

	// DataFolder holds the view space file and receives captured data. Required.
	DataFolder string `yaml:"data_folder"`

	// ViewSpaceName is the view space file name inside DataFolder. Required.
	ViewSpaceName string `yaml:"view_space_name"`

	// CapturePattern is joined to DataFolder and formatted with the current
	// view index to form the data retrieval path hint.
	CapturePattern string `yaml:"capture_pattern"`

	// ModelName is the simulator model that gets teleported.
	ModelName string `yaml:"model_name"`

	SimulatorURL string `yaml:"simulator_url"`
	RetrieverURL string `yaml:"retriever_url"`
	ListenAddr   string `yaml:"listen_addr"`

	// SettleDuration is how long a move waits after commanding the simulator.
	SettleDuration time.Duration `yaml:"settle_duration"`

	// PublishInterval is the transform publish period (~20 Hz by default).
	PublishInterval time.Duration `yaml:"publish_interval"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// DefaultConfig returns a Config with every optional value filled in.
func DefaultConfig() Config {
	return Config{
		PlanningFrame:   DefaultPlanningFrame,
		CameraFrame:     DefaultCameraFrame,
		CapturePattern:  DefaultCapturePattern,
		ModelName:       DefaultModelName,
		SimulatorURL:    DefaultSimulatorURL,
		RetrieverURL:    DefaultRetrieverURL,
		ListenAddr:      DefaultListenAddr,
		SettleDuration:  DefaultSettleDuration,
		PublishInterval: DefaultPublishInterval,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads path (if non-empty) over the defaults and applies environment
// overrides. The result is not validated.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from FLYCAM_* environment variables.
func (c *Config) ApplyEnv() error {
	str := map[string]*string{
		"FLYCAM_PLANNING_FRAME":  &c.PlanningFrame,
		"FLYCAM_CAMERA_FRAME":    &c.CameraFrame,
		"FLYCAM_DATA_FOLDER":     &c.DataFolder,
		"FLYCAM_VIEW_SPACE_NAME": &c.ViewSpaceName,
		"FLYCAM_CAPTURE_PATTERN": &c.CapturePattern,
		"FLYCAM_MODEL_NAME":      &c.ModelName,
		"FLYCAM_SIMULATOR_URL":   &c.SimulatorURL,
		"FLYCAM_RETRIEVER_URL":   &c.RetrieverURL,
		"FLYCAM_LISTEN_ADDR":     &c.ListenAddr,
		"FLYCAM_LOG_LEVEL":       &c.LogLevel,
		"FLYCAM_LOG_FORMAT":      &c.LogFormat,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	dur := map[string]*time.Duration{
		"FLYCAM_SETTLE_DURATION":  &c.SettleDuration,
		"FLYCAM_PUBLISH_INTERVAL": &c.PublishInterval,
	}
	for key, dst := range dur {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
	}
	return nil
}

// parseDuration accepts Go durations ("1s") or plain seconds ("0.05").
func parseDuration(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("not a duration: %q", v)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// Validate checks that the configuration is usable. A blank planning frame
// falls back to the default rather than failing.
func (c *Config) Validate() error {
	if c.PlanningFrame == "" {
		c.PlanningFrame = DefaultPlanningFrame
	}
	if c.DataFolder == "" {
		return fmt.Errorf("%w: data_folder", ErrMissing)
	}
	if c.ViewSpaceName == "" {
		return fmt.Errorf("%w: view_space_name", ErrMissing)
	}
	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name", ErrMissing)
	}
	if err := checkCapturePattern(c.CapturePattern); err != nil {
		return err
	}
	if c.SettleDuration < 0 {
		return fmt.Errorf("settle_duration must not be negative, got %s", c.SettleDuration)
	}
	if c.PublishInterval <= 0 {
		return fmt.Errorf("publish_interval must be positive, got %s", c.PublishInterval)
	}
	return nil
}

// checkCapturePattern requires exactly one integer verb, e.g. "capture_set_%d".
func checkCapturePattern(p string) error {
	a, b := fmt.Sprintf(p, 1), fmt.Sprintf(p, 2)
	if strings.Contains(a, "%!") || a == b {
		return fmt.Errorf("capture_pattern %q must format exactly one integer view index", p)
	}
	return nil
}
