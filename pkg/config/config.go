package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config is a single node's storage and replication configuration.
type Config struct {
	DataDir           string            `yaml:"data_dir"`
	BindAddr          string            `yaml:"bind_addr"`
	MetricsAddr       string            `yaml:"metrics_addr"`
	ReplicationFactor int               `yaml:"replication_factor"`
	ReadQuorum        int               `yaml:"read_quorum"`
	WriteQuorum       int               `yaml:"write_quorum"`
	LogLevel          string            `yaml:"log_level"`
	LogJSON           bool              `yaml:"log_json"`

	// Peers seeds the ring with a node-id -> address map until the
	// cluster's membership/ring service takes over layout distribution.
	Peers map[string]string `yaml:"peers"`
}

// Default returns the configuration a freshly initialized single node
// starts with.
func Default() Config {
	return Config{
		DataDir:           "./data",
		BindAddr:          "0.0.0.0:7420",
		MetricsAddr:       "0.0.0.0:7421",
		ReplicationFactor: 3,
		ReadQuorum:        2,
		WriteQuorum:       2,
		LogLevel:          "info",
		Peers:             map[string]string{},
	}
}

// Load reads a YAML configuration file, starting from Default and
// letting path override any field it sets. An empty path returns
// Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the quorum invariants the replication policy relies on.
func (c Config) Validate() error {
	if c.ReplicationFactor <= 0 {
		return fmt.Errorf("config: replication_factor must be positive, got %d", c.ReplicationFactor)
	}
	if c.ReadQuorum <= 0 || c.ReadQuorum > c.ReplicationFactor {
		return fmt.Errorf("config: read_quorum must be in (0, %d], got %d", c.ReplicationFactor, c.ReadQuorum)
	}
	if c.WriteQuorum <= 0 || c.WriteQuorum > c.ReplicationFactor {
		return fmt.Errorf("config: write_quorum must be in (0, %d], got %d", c.ReplicationFactor, c.WriteQuorum)
	}
	if c.ReadQuorum+c.WriteQuorum <= c.ReplicationFactor {
		return fmt.Errorf("config: read_quorum + write_quorum (%d) must exceed replication_factor (%d) to guarantee overlap",
			c.ReadQuorum+c.WriteQuorum, c.ReplicationFactor)
	}
	return nil
}

// BindFlags registers the persistent flags that override config file
// values on the command line.
func BindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Path to YAML config file")
	cmd.PersistentFlags().String("data-dir", "", "Override data_dir")
	cmd.PersistentFlags().String("bind-addr", "", "Override bind_addr")
	cmd.PersistentFlags().String("log-level", "", "Override log_level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("log-json", false, "Override log_json")
}

// ApplyFlags overlays any flags the user explicitly set onto cfg.
func ApplyFlags(cmd *cobra.Command, cfg Config) Config {
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := cmd.Flags().GetString("bind-addr"); v != "" {
		cfg.BindAddr = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if cmd.Flags().Changed("log-json") {
		v, _ := cmd.Flags().GetBool("log-json")
		cfg.LogJSON = v
	}
	return cfg
}
