package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	adapter "github.com/axiomhq/axiom-go/adapters/zerolog"
	"github.com/axiomhq/axiom-go/axiom"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "pdfmerger"

// Options defines logger initialization parameters.
type Options struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// Console receives human or JSON output. Defaults to stderr so that
	// command output on stdout stays clean.
	Console io.Writer

	SendToAxiom   bool
	AxiomAPIKey   string
	AxiomOrgID    string
	AxiomDataset  string
	AxiomMinLevel string
}

var (
	global = zerolog.Nop()
	ax     *adapter.Writer
)

// Init sets up the global logger: optional file rotation, console, optional Axiom forwarding.
func Init(opts Options) error {
	Close()

	var writers []io.Writer

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return fmt.Errorf("create logs dir: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		})
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	if opts.Pretty {
		writers = append(writers, zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339})
	} else {
		writers = append(writers, console)
	}

	if opts.SendToAxiom && opts.AxiomAPIKey != "" {
		w, err := newAxiomWriter(opts)
		if err != nil {
			fmt.Fprintf(console, "Axiom disabled: %v\n", err)
		} else {
			ax = w
			writers = append(writers, w)
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		lvl = zerolog.InfoLevel
	}

	global = zerolog.New(io.MultiWriter(writers...)).Level(lvl).With().Timestamp().Str("service", serviceName).Logger()
	log.Logger = global
	return nil
}

func newAxiomWriter(opts Options) (*adapter.Writer, error) {
	dataset := opts.AxiomDataset
	if dataset == "" {
		dataset = "dev_" + serviceName
	}
	client := []axiom.Option{axiom.SetToken(opts.AxiomAPIKey)}
	if opts.AxiomOrgID != "" {
		client = append(client, axiom.SetOrganizationID(opts.AxiomOrgID))
	}
	return adapter.New(
		adapter.SetDataset(dataset),
		adapter.SetClientOptions(client),
		adapter.SetLevels(shippedLevels(opts.AxiomMinLevel)),
	)
}

// shippedLevels lists the levels forwarded to Axiom: min and everything
// more severe. Debug and trace stay local unless asked for.
func shippedLevels(min string) []zerolog.Level {
	lvl, err := zerolog.ParseLevel(min)
	if err != nil || min == "" || lvl == zerolog.NoLevel || lvl == zerolog.Disabled {
		lvl = zerolog.InfoLevel
	}
	var out []zerolog.Level
	for l := lvl; l <= zerolog.PanicLevel; l++ {
		out = append(out, l)
	}
	return out
}

// Close flushes the Axiom writer, if any.
func Close() {
	if ax != nil {
		ax.Close()
		ax = nil
	}
}

// Get returns the global logger.
func Get() *zerolog.Logger { return &global }

// WithOperation returns a child of the global logger tagged with an operation id and workflow.
func WithOperation(opID, workflow string) zerolog.Logger {
	return log.Logger.With().Str("op_id", opID).Str("workflow", workflow).Logger()
}
