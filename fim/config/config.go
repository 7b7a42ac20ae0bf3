package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	internal "github.com/ZanzyTHEbar/frequent-itemsets/fim"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/counting"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/encoding"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Mining  MiningConfig  `mapstructure:"mining"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// MiningConfig stores the run parameters of the miner.
type MiningConfig struct {
	SupportPercentage float64   `mapstructure:"supportPercentage"`
	Sweep             []float64 `mapstructure:"sweep"`
	Counter           string    `mapstructure:"counter"`
	Workers           int       `mapstructure:"workers"`
	MaxLevel          int       `mapstructure:"maxLevel"`
	TimeoutSeconds    int       `mapstructure:"timeoutSeconds"`
}

// DatasetConfig stores how the input file is read and encoded.
type DatasetConfig struct {
	Path        string `mapstructure:"path"`
	Delimiter   string `mapstructure:"delimiter"`
	Comment     string `mapstructure:"comment"`
	LabelColumn string `mapstructure:"labelColumn"`
	Prefix      string `mapstructure:"prefix"`
	KeepEmpty   bool   `mapstructure:"keepEmpty"`
}

// LoggingConfig stores logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
// An explicit configPath must exist; otherwise a missing file means defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("mining.supportPercentage", internal.DefaultSupportPercentage)
	v.SetDefault("mining.sweep", internal.DefaultSweep)
	v.SetDefault("mining.counter", internal.DefaultCounter)
	v.SetDefault("mining.workers", 0)
	v.SetDefault("mining.maxLevel", 0)
	v.SetDefault("mining.timeoutSeconds", 0)
	v.SetDefault("dataset.path", "")
	v.SetDefault("dataset.delimiter", internal.DefaultDelimiter)
	v.SetDefault("dataset.comment", "#")
	v.SetDefault("dataset.labelColumn", string(encoding.LabelLast))
	v.SetDefault("dataset.prefix", encoding.DefaultPrefix)
	v.SetDefault("dataset.keepEmpty", false)
	v.SetDefault("logging.level", internal.DefaultLogLevel)
	v.SetDefault("logging.format", "json")

	v.SetEnvPrefix(internal.DefaultEnvPrefix)
	v.AutomaticEnv()                                   // Read in environment variables that match
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // mining.supportPercentage becomes FIM_MINING_SUPPORTPERCENTAGE

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validPercentage(p float64) bool { return p > 0 && p <= 100 }

// Validate checks option ranges. Support percentages outside (0, 100] are
// rejected here as well as by the miner.
func (c *Config) Validate() error {
	if !validPercentage(c.Mining.SupportPercentage) {
		return fmt.Errorf("mining.supportPercentage must be in (0, 100]: got %v", c.Mining.SupportPercentage)
	}
	for _, p := range c.Mining.Sweep {
		if !validPercentage(p) {
			return fmt.Errorf("mining.sweep entries must be in (0, 100]: got %v", p)
		}
	}
	if _, err := counting.ForName(c.Mining.Counter, 1); err != nil {
		return fmt.Errorf("mining.counter: %w", err)
	}
	if c.Mining.Workers < 0 || c.Mining.MaxLevel < 0 || c.Mining.TimeoutSeconds < 0 {
		return errors.New("mining.workers, mining.maxLevel and mining.timeoutSeconds must not be negative")
	}
	if _, err := c.Dataset.EncodingOptions(); err != nil {
		return err
	}
	return nil
}

// EncodingOptions converts the dataset section into encoder options.
func (d DatasetConfig) EncodingOptions() (encoding.Options, error) {
	delim, err := singleRune("dataset.delimiter", d.Delimiter)
	if err != nil {
		return encoding.Options{}, err
	}
	var comment rune
	if d.Comment != "" {
		if comment, err = singleRune("dataset.comment", d.Comment); err != nil {
			return encoding.Options{}, err
		}
	}

	label := encoding.LabelMode(strings.ToLower(d.LabelColumn))
	switch label {
	case "", encoding.LabelLast, encoding.LabelNone:
	default:
		return encoding.Options{}, fmt.Errorf("dataset.labelColumn must be %q or %q: got %q", encoding.LabelLast, encoding.LabelNone, d.LabelColumn)
	}

	return encoding.Options{
		Delimiter: delim,
		Comment:   comment,
		Label:     label,
		Prefix:    d.Prefix,
		KeepEmpty: d.KeepEmpty,
	}, nil
}

// singleRune accepts one character or the names tab, comma and space.
func singleRune(key, s string) (rune, error) {
	switch strings.ToLower(s) {
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "space":
		return ' ', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%s must be a single character: got %q", key, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
