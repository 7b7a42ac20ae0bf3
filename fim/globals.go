package internal

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// DefaultAppName names the binary, the config directory and the env prefix.
	DefaultAppName    = "fim"
	DefaultEnvPrefix  = "FIM"
	DefaultConfigPath = filepath.Join(getHomeDir(), ".config", DefaultAppName)

	// Default mining settings
	DefaultSupportPercentage = 40.0
	// DefaultSweep is the threshold sweep the tool runs when none is given.
	DefaultSweep     = []float64{30, 40, 50, 60, 70}
	DefaultCounter   = "auto"
	DefaultDelimiter = "\t"
	DefaultLogLevel  = "info"
)

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current working directory if home directory is unavailable
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			log.Printf("Unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("Unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// NewLogger builds a logger writing to w at the named level. format "console"
// selects human readable output, anything else writes JSON lines.
func NewLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
