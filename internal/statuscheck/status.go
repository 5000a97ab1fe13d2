package statuscheck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/ftwtie/pdfmerger/internal/pdfdoc"
)

// RedisPinger models the minimal Redis capability we need for status checks.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// Checker aggregates health checks for the codec, the output directory and
// the optional telemetry stream.
type Checker struct {
	codec     pdfdoc.Codec
	redis     RedisPinger
	outputDir string
}

// Options configures the Checker.
type Options struct {
	Codec     pdfdoc.Codec
	Redis     RedisPinger // nil when the stream sink is disabled
	OutputDir string      // empty skips the check
}

// Status represents the readiness of a subsystem.
type Status struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Summary bundles all subsystem statuses.
type Summary struct {
	Codec     Status `json:"codec"`
	Output    Status `json:"output"`
	Telemetry Status `json:"telemetry"`
}

// Healthy is true when the subsystems needed to merge and split work.
// Telemetry is never required.
func (s Summary) Healthy() bool { return s.Codec.OK && s.Output.OK }

// New creates a new Checker with the provided options.
func New(opts Options) *Checker {
	codec := opts.Codec
	if codec == nil {
		codec = pdfdoc.NewPDFCPU()
	}
	return &Checker{codec: codec, redis: opts.Redis, outputDir: opts.OutputDir}
}

// Summary returns the current status snapshot.
func (c *Checker) Summary(ctx context.Context) Summary {
	return Summary{
		Codec:     c.checkCodec(ctx),
		Output:    c.checkOutput(),
		Telemetry: c.checkRedis(ctx),
	}
}

func (c *Checker) checkCodec(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pdfdoc.SelfTest(ctx, c.codec); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "Available"}
}

func (c *Checker) checkOutput() Status {
	if c.outputDir == "" {
		return Status{OK: true, Message: "Browser download"}
	}
	fi, err := os.Stat(c.outputDir)
	if err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	if !fi.IsDir() {
		return Status{OK: false, Message: "Not a directory"}
	}
	f, err := os.CreateTemp(c.outputDir, ".pdfmerger-check-*")
	if err != nil {
		return Status{OK: false, Message: "Not writable"}
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return Status{OK: true, Message: filepath.Clean(c.outputDir)}
}

func (c *Checker) checkRedis(ctx context.Context) Status {
	if c.redis == nil {
		return Status{OK: true, Message: "Stream disabled"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.redis.Ping(ctx); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "Connected"}
}

func trimError(err error) string {
	if err == nil {
		return ""
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	msg := err.Error()
	if len(msg) > 120 {
		return msg[:120]
	}
	return msg
}
