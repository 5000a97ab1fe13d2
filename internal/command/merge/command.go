package merge

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/ftwtie/pdfmerger/internal/command/common"
	"github.com/ftwtie/pdfmerger/internal/workflow"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "Append every page of the second PDF to the first and write merged.pdf",
		ArgsUsage: "FIRST.pdf SECOND.pdf",
		Flags:     common.WithOutputFlags(),
		Action: func(cCtx *cli.Context) error {
			ctx := cCtx.Context
			if cCtx.NArg() != 2 {
				return common.Fail(&workflow.InputValidationError{Field: "files", Message: workflow.MsgSelectBoth}, "")
			}
			cfg := common.Config(cCtx)

			rt, err := common.NewRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			var state workflow.MergeState
			first, err := common.ReadSource(cCtx.Args().Get(0))
			if err != nil {
				return err
			}
			if err := rt.Assembler.SelectMergeFile(ctx, &state, 0, first); err != nil {
				return common.Fail(err, workflow.MsgUnreadable)
			}
			second, err := common.ReadSource(cCtx.Args().Get(1))
			if err != nil {
				return err
			}
			if err := rt.Assembler.SelectMergeFile(ctx, &state, 1, second); err != nil {
				return common.Fail(err, workflow.MsgUnreadable)
			}

			sink, err := common.OutputSink(cCtx, cfg)
			if err != nil {
				return err
			}
			res, err := rt.Assembler.Merge(ctx, sink, first, second)
			if err != nil {
				return common.Fail(err, workflow.MsgMergeFailed)
			}

			written := sink.Written()
			for i, out := range res.Outputs {
				fmt.Fprintf(cCtx.App.Writer, "%s\t%d pages\t%s\n", written[i], out.Pages, humanize.Bytes(uint64(out.Size)))
			}
			return nil
		},
	}
}
