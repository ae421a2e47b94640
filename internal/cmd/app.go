package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/slipstream/metascrape/internal/config"
	"github.com/slipstream/metascrape/internal/logger"
	"github.com/slipstream/metascrape/internal/metadata"
	"github.com/slipstream/metascrape/internal/scraper"
	"github.com/slipstream/metascrape/internal/transport"
)

// app holds what every command needs: configuration, a logger and the
// outbound transport.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	transport *transport.Client
}

// newApp loads configuration and applies the global flag overrides. Logs go
// to the command's stderr.
func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.provider != "" {
		cfg.Metadata.DefaultProvider = opts.provider
	}
	if opts.language != "" {
		cfg.Metadata.Language = opts.language
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}, cmd.ErrOrStderr())

	t := transport.New(transport.Config{
		Timeout:           cfg.Transport.Timeout(),
		RequestsPerSecond: cfg.Transport.RequestsPerSecond,
		Burst:             cfg.Transport.Burst,
		UserAgent:         cfg.Transport.UserAgent,
	}, log.Component("transport"))

	return &app{cfg: cfg, log: log, transport: t}, nil
}

func (a *app) newService(opts ...metadata.ServiceOption) (*metadata.Service, error) {
	svc, err := metadata.NewService(a.cfg.Metadata, a.transport, a.log.Logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata service: %w", err)
	}
	return svc, nil
}

func (a *app) Close() error {
	return a.log.Close()
}

// outputError is a classified error in command output.
type outputError struct {
	Type      string `yaml:"type"`
	Message   string `yaml:"message"`
	Technical string `yaml:"technical,omitempty"`
}

func toOutputError(e *scraper.Error) *outputError {
	return &outputError{Type: e.Type.String(), Message: e.Message, Technical: e.Technical}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return enc.Close()
}
