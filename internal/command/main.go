package command

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ftwtie/pdfmerger/internal/command/common"
)

// Version is set at build time with -ldflags.
var Version = "dev"

func Main(name string, usage string, commands ...*cli.Command) {
	if err := NewApp(name, usage, commands...).Run(os.Args); err != nil {
		os.Exit(1)
	}
}

// NewApp builds the cli application without running it.
func NewApp(name string, usage string, commands ...*cli.Command) *cli.App {
	app := &cli.App{
		Name:     name,
		Usage:    usage,
		Commands: commands,
		Version:  Version,
		Flags:    common.GlobalFlags(),
		Before:   common.Setup,
		After:    common.Teardown,
	}

	app.ExitErrHandler = func(cCtx *cli.Context, err error) {
		if err == nil {
			return
		}
		msg := err.Error()
		var ue *common.UserError
		if errors.As(err, &ue) {
			msg = ue.Message
		}
		if cCtx.Bool(common.ParamDebug) {
			log.Error().Msg(fmt.Sprintf("%+v", err))
		} else {
			log.Debug().Err(err).Msg("command failed")
		}
		fmt.Fprintln(cCtx.App.ErrWriter, "error:", msg)
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	return app
}
