package config

import (
	"encoding/json"
	"os"
)

// Config holds runtime configuration for the viewer and its live transport.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`
	// UI
	TickMS      int `json:"tick_ms"`
	PreviewMaxW int `json:"preview_max_w"`
	PreviewMaxH int `json:"preview_max_h"`

	// Live transport (MQTT)
	Broker          string `json:"broker"`
	TopicPrefix     string `json:"topic_prefix"`
	QoS             int    `json:"qos"`
	ConnectTimeoutS int    `json:"connect_timeout_s"`

	// Debug stats logging period
	StatsLogS int `json:"stats_log_s"`

	// Simulator
	SimIntervalMS int `json:"sim_interval_ms"`
	SimWidth      int `json:"sim_width"`
	SimHeight     int `json:"sim_height"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:           false,
		TickMS:          50,
		PreviewMaxW:     768,
		PreviewMaxH:     768,
		Broker:          "",
		TopicPrefix:     "pv",
		QoS:             0,
		ConnectTimeoutS: 5,
		StatsLogS:       5,
		SimIntervalMS:   200,
		SimWidth:        512,
		SimHeight:       512,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.TickMS < 10 {
		c.TickMS = 10
	}
	if c.TickMS > 1000 {
		c.TickMS = 1000
	}
	if c.PreviewMaxW < 64 {
		c.PreviewMaxW = 768
	}
	if c.PreviewMaxH < 64 {
		c.PreviewMaxH = 768
	}
	if c.QoS < 0 || c.QoS > 2 {
		c.QoS = 0
	}
	if c.ConnectTimeoutS <= 0 {
		c.ConnectTimeoutS = 5
	}
	if c.StatsLogS <= 0 {
		c.StatsLogS = 5
	}
	if c.SimIntervalMS <= 0 {
		c.SimIntervalMS = 200
	}
	if c.SimWidth <= 0 {
		c.SimWidth = 512
	}
	if c.SimHeight <= 0 {
		c.SimHeight = 512
	}
	return nil
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
