// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New constructs a logrus logger from opts. Empty values default to info/text on stdout.
func New(opts Options) (*logrus.Logger, error) {
	logger := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	logger.SetOutput(out)

	levelName := strings.TrimSpace(opts.Level)
	if levelName == "" {
		levelName = "info"
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
	return logger, nil
}
