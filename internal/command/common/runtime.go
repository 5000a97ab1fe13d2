package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ftwtie/pdfmerger/internal/assembler"
	"github.com/ftwtie/pdfmerger/internal/config"
	"github.com/ftwtie/pdfmerger/internal/download"
	"github.com/ftwtie/pdfmerger/internal/logger"
	"github.com/ftwtie/pdfmerger/internal/metrics"
	"github.com/ftwtie/pdfmerger/internal/pdfdoc"
	"github.com/ftwtie/pdfmerger/internal/telemetry"
	"github.com/ftwtie/pdfmerger/internal/workflow"
)

const metaConfig = "config"

// Setup loads configuration and initialises logging and metrics. It runs
// before every command.
func Setup(cCtx *cli.Context) error {
	cfg := config.Load(cCtx.String(ParamEnvFile))
	if lvl := cCtx.String(ParamLogLevel); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if err := logger.Init(logger.Options{
		Level:         cfg.Logging.Level,
		Pretty:        cfg.Logging.Pretty,
		File:          cfg.Logging.File,
		MaxSizeMB:     cfg.Logging.MaxSizeMB,
		MaxBackups:    cfg.Logging.MaxBackups,
		MaxAgeDays:    cfg.Logging.MaxAgeDays,
		Compress:      cfg.Logging.Compress,
		Console:       cCtx.App.ErrWriter,
		SendToAxiom:   cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:   cfg.Axiom.APIKey,
		AxiomOrgID:    cfg.Axiom.OrgID,
		AxiomDataset:  cfg.Axiom.Dataset,
		AxiomMinLevel: cfg.Axiom.MinLevel,
	}); err != nil {
		return errors.Wrap(err, "could not initialise logging")
	}
	metrics.Init()
	if cCtx.App.Metadata == nil {
		cCtx.App.Metadata = map[string]any{}
	}
	cCtx.App.Metadata[metaConfig] = cfg
	return nil
}

// Teardown flushes buffered log sinks.
func Teardown(*cli.Context) error {
	logger.Close()
	return nil
}

// Config returns the configuration loaded by Setup.
func Config(cCtx *cli.Context) config.Config {
	if cfg, ok := cCtx.App.Metadata[metaConfig].(config.Config); ok {
		return cfg
	}
	return config.FromEnv()
}

// Runtime holds the collaborators shared by the commands.
type Runtime struct {
	Codec     pdfdoc.Codec
	Assembler *assembler.Assembler
	Stream    *telemetry.RedisStream // nil unless TELEMETRY_REDIS_URL is set

	async *telemetry.Async
}

// NewRuntime wires the codec, telemetry and assembler from cfg. An
// unreachable telemetry stream is logged and skipped.
func NewRuntime(cfg config.Config) (*Runtime, error) {
	rt := &Runtime{Codec: pdfdoc.NewPDFCPU()}

	var notifier telemetry.Notifier = telemetry.Nop{}
	if cfg.Telemetry.Enabled {
		var senders telemetry.Multi
		if cfg.Telemetry.Log {
			senders = append(senders, telemetry.LogSender{Logger: log.Logger})
		}
		if cfg.Telemetry.Metrics {
			senders = append(senders, telemetry.MetricsSender{})
		}
		if cfg.Telemetry.RedisURL != "" {
			s, err := telemetry.NewRedisStream(cfg.Telemetry.RedisURL, cfg.Telemetry.RedisStream)
			if err != nil {
				log.Warn().Err(err).Msg("telemetry stream disabled")
			} else {
				rt.Stream = s
				senders = append(senders, s)
			}
		}
		if len(senders) > 0 {
			rt.async = telemetry.NewAsync(senders, cfg.Telemetry.Buffer)
			notifier = rt.async
		}
	}

	rt.Assembler = assembler.New(assembler.Options{Codec: rt.Codec, Notifier: notifier})
	return rt, nil
}

// Close drains pending events and closes the stream.
func (rt *Runtime) Close() error {
	if rt.async != nil {
		_ = rt.async.Close()
	}
	if rt.Stream != nil {
		return rt.Stream.Close()
	}
	return nil
}

// OutputSink returns a directory sink from the --out and --overwrite flags,
// falling back to the configured output directory.
func OutputSink(cCtx *cli.Context, cfg config.Config) (*download.DirSink, error) {
	dir := cCtx.String(ParamOut)
	if dir == "" {
		dir = cfg.Output.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "could not create output directory '%s'", dir)
	}
	return &download.DirSink{Dir: dir, Overwrite: cfg.Output.Overwrite || cCtx.Bool(ParamOverwrite)}, nil
}

// ReadSource loads a PDF from disk. The type is sniffed, never declared.
func ReadSource(path string) (assembler.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return assembler.Source{}, errors.Wrapf(err, "could not read '%s'", path)
	}
	return assembler.Source{Name: filepath.Base(path), Data: data}, nil
}

// UserError carries the one message a command prints on failure.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string { return fmt.Sprintf("%s: %v", e.Message, e.Err) }
func (e *UserError) Unwrap() error { return e.Err }

const msgExists = "An output file already exists. Use --overwrite to replace it."

// Fail converts a workflow error into a UserError.
func Fail(err error, fallback string) error {
	if err == nil {
		return nil
	}
	msg := workflow.MessageFor(err, fallback)
	if errors.Is(err, download.ErrExists) {
		msg = msgExists
	}
	return &UserError{Message: msg, Err: errors.WithStack(err)}
}
