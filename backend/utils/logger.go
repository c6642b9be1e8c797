package utils

import (
	"io"
	"log"
	"os"
)

type LoggerConfig struct {
	// Format is "text" or "json". JSON drops the file:line flag so lines
	// stay machine friendly.
	Format string
	// Output defaults to os.Stdout.
	Output io.Writer
	// EnableColors tints the prefix for terminals.
	EnableColors bool
}

const logPrefix = "[skillcred] "

// InitLogger builds the process logger that is handed to every component.
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	prefix := logPrefix
	if cfg.Format == "json" {
		return log.New(cfg.Output, prefix, log.LstdFlags|log.LUTC)
	}
	if cfg.EnableColors {
		prefix = "\033[36m" + prefix + "\033[0m"
	}
	return log.New(cfg.Output, prefix, log.LstdFlags|log.Lshortfile|log.LUTC)
}
