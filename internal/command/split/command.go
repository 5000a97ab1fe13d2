package split

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/ftwtie/pdfmerger/internal/command/common"
	"github.com/ftwtie/pdfmerger/internal/workflow"
)

const (
	flagMode  = "mode"
	flagPages = "pages"
	flagFrom  = "from"
	flagTo    = "to"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:      "split",
		Usage:     "Extract pages, keep a page range or write every page to its own file",
		ArgsUsage: "FILE.pdf",
		Flags: common.WithOutputFlags(
			&cli.StringFlag{
				Name:    flagMode,
				Aliases: []string{"m"},
				Value:   string(workflow.ModeExtract),
				Usage:   "split mode: extract, range or every",
			},
			&cli.StringFlag{
				Name:    flagPages,
				Aliases: []string{"p"},
				Usage:   "pages to extract, e.g. 1,3,5-7",
			},
			&cli.StringFlag{
				Name:  flagFrom,
				Usage: "first page of the range",
			},
			&cli.StringFlag{
				Name:  flagTo,
				Usage: "last page of the range",
			},
		),
		Action: func(cCtx *cli.Context) error {
			ctx := cCtx.Context
			if cCtx.NArg() != 1 {
				return common.Fail(&workflow.InputValidationError{Field: "file", Message: workflow.MsgSelectFile}, "")
			}
			cfg := common.Config(cCtx)

			rt, err := common.NewRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			src, err := common.ReadSource(cCtx.Args().First())
			if err != nil {
				return err
			}
			state := workflow.NewSplitState()
			if err := rt.Assembler.SelectSplitFile(ctx, &state, src); err != nil {
				return common.Fail(err, workflow.MsgUnreadable)
			}
			if err := apply(cCtx, &state); err != nil {
				return common.Fail(err, "")
			}

			sink, err := common.OutputSink(cCtx, cfg)
			if err != nil {
				return err
			}
			res, err := rt.Assembler.Split(ctx, sink, state, src)
			if err != nil {
				return common.Fail(err, workflow.MsgSplitFailed)
			}

			written := sink.Written()
			for i, out := range res.Outputs {
				fmt.Fprintf(cCtx.App.Writer, "%s\t%d pages\t%s\n", written[i], out.Pages, humanize.Bytes(uint64(out.Size)))
			}
			return nil
		},
	}
}

// apply sets mode, selection and range from the flags.
func apply(cCtx *cli.Context, state *workflow.SplitState) error {
	mode, err := workflow.ParseMode(cCtx.String(flagMode))
	if err != nil {
		return err
	}
	if err := state.SetMode(mode); err != nil {
		return err
	}
	if cCtx.IsSet(flagPages) {
		pages, err := workflow.ParsePageList(cCtx.String(flagPages))
		if err != nil {
			return err
		}
		if err := state.ToggleAll(pages); err != nil {
			return err
		}
	}
	if cCtx.IsSet(flagFrom) {
		state.SetFromInput(cCtx.String(flagFrom))
	}
	if cCtx.IsSet(flagTo) {
		state.SetToInput(cCtx.String(flagTo))
	}
	return nil
}
