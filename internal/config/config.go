// Package config loads framemap configuration from an optional YAML file
// merged over built-in defaults. Everything version-specific about the
// DevTools protocol (method names, the liveness probe, the error signatures
// that identify same-process iframes) lives here so it can be overridden
// without a rebuild.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Methods holds the protocol method names used by the resolution engine.
// Defaults match the Chrome DevTools Protocol.
type Methods struct {
	Probe              string `yaml:"probe"`
	GetDocument        string `yaml:"get_document"`
	GetAXTree          string `yaml:"get_ax_tree"`
	GetFrameTree       string `yaml:"get_frame_tree"`
	GetFrameOwner      string `yaml:"get_frame_owner"`
	GetBoxModel        string `yaml:"get_box_model"`
	CaptureScreenshot  string `yaml:"capture_screenshot"`
	DispatchMouseEvent string `yaml:"dispatch_mouse_event"`
	Evaluate           string `yaml:"evaluate"`
}

// DefaultMethods returns the CDP method names.
func DefaultMethods() Methods {
	return Methods{
		Probe:              "Runtime.evaluate",
		GetDocument:        "DOM.getDocument",
		GetAXTree:          "Accessibility.getFullAXTree",
		GetFrameTree:       "Page.getFrameTree",
		GetFrameOwner:      "DOM.getFrameOwner",
		GetBoxModel:        "DOM.getBoxModel",
		CaptureScreenshot:  "Page.captureScreenshot",
		DispatchMouseEvent: "Input.dispatchMouseEvent",
		Evaluate:           "Runtime.evaluate",
	}
}

// Config is the full framemap configuration.
type Config struct {
	// WSURL is the browser's DevTools endpoint (ws:// or http:// form).
	WSURL string `yaml:"ws_url"`
	// TargetID pins commands to a specific page target. Empty = first page.
	TargetID string `yaml:"target_id"`

	CommandTimeoutMS int `yaml:"command_timeout_ms"`
	ProbeTimeoutMS   int `yaml:"probe_timeout_ms"`

	// AliasErrorSignatures are substrings of attach errors that mean a frame
	// shares its parent's target (same-process iframe). This is a documented
	// heuristic: the protocol exposes no capability probe for it.
	AliasErrorSignatures []string `yaml:"alias_error_signatures"`

	// TruncateNames bounds node names in the simplified serialization.
	TruncateNames int `yaml:"truncate_names"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	Methods Methods `yaml:"methods"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		WSURL:            "http://127.0.0.1:9222",
		CommandTimeoutMS: 30000,
		ProbeTimeoutMS:   2000,
		AliasErrorSignatures: []string{
			"does not have a separate CDP session",
			"No target with given id",
			"no devtools target for frame",
		},
		TruncateNames: 120,
		LogLevel:      "info",
		Methods:       DefaultMethods(),
	}
}

// DefaultPath returns the default config file location (~/.framemap.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".framemap.yaml")
}

// Load reads the config file at path over the defaults. A missing file at
// the default path is not an error; a missing explicit path is.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults restores zero-valued fields a partial file left out.
func (c *Config) fillDefaults() {
	d := Default()
	if c.WSURL == "" {
		c.WSURL = d.WSURL
	}
	if c.CommandTimeoutMS <= 0 {
		c.CommandTimeoutMS = d.CommandTimeoutMS
	}
	if c.ProbeTimeoutMS <= 0 {
		c.ProbeTimeoutMS = d.ProbeTimeoutMS
	}
	if len(c.AliasErrorSignatures) == 0 {
		c.AliasErrorSignatures = d.AliasErrorSignatures
	}
	if c.TruncateNames <= 0 {
		c.TruncateNames = d.TruncateNames
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	dm := DefaultMethods()
	m := &c.Methods
	if m.Probe == "" {
		m.Probe = dm.Probe
	}
	if m.GetDocument == "" {
		m.GetDocument = dm.GetDocument
	}
	if m.GetAXTree == "" {
		m.GetAXTree = dm.GetAXTree
	}
	if m.GetFrameTree == "" {
		m.GetFrameTree = dm.GetFrameTree
	}
	if m.GetFrameOwner == "" {
		m.GetFrameOwner = dm.GetFrameOwner
	}
	if m.GetBoxModel == "" {
		m.GetBoxModel = dm.GetBoxModel
	}
	if m.CaptureScreenshot == "" {
		m.CaptureScreenshot = dm.CaptureScreenshot
	}
	if m.DispatchMouseEvent == "" {
		m.DispatchMouseEvent = dm.DispatchMouseEvent
	}
	if m.Evaluate == "" {
		m.Evaluate = dm.Evaluate
	}
}

// CommandTimeout returns the per-command timeout.
func (c Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutMS) * time.Millisecond
}

// ProbeTimeout returns the liveness probe timeout.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMS) * time.Millisecond
}
