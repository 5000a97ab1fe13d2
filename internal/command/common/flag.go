package common

import (
	"github.com/urfave/cli/v2"
)

const (
	ParamEnvFile   = "env-file"
	ParamLogLevel  = "log-level"
	ParamDebug     = "debug"
	ParamOut       = "out"
	ParamOverwrite = "overwrite"
)

// GlobalFlags are accepted by every command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    ParamEnvFile,
			Value:   ".env",
			EnvVars: []string{"PDFMERGER_ENV_FILE"},
			Usage:   "dotenv file to load before reading the environment",
		},
		&cli.StringFlag{
			Name:    ParamLogLevel,
			EnvVars: []string{"PDFMERGER_LOG_LEVEL"},
			Usage:   "override LOG_LEVEL (debug, info, warn, error)",
		},
		&cli.BoolFlag{
			Name:    ParamDebug,
			EnvVars: []string{"PDFMERGER_DEBUG"},
			Usage:   "print full error chains",
		},
	}
}

// WithOutputFlags prepends the flags of commands that write files.
func WithOutputFlags(flags ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:    ParamOut,
			Aliases: []string{"o"},
			Usage:   "directory to write results into (default OUTPUT_DIR)",
		},
		&cli.BoolFlag{
			Name:  ParamOverwrite,
			Usage: "replace existing files",
		},
	}, flags...)
}
