package info

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/ftwtie/pdfmerger/internal/command/common"
	"github.com/ftwtie/pdfmerger/internal/pdfdoc"
	"github.com/ftwtie/pdfmerger/internal/workflow"
)

const (
	flagJSON  = "json"
	flagCount = "count"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Print name, size and page count of PDF files",
		ArgsUsage: "FILE.pdf...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagJSON,
				Usage: "print JSON instead of a table",
			},
			&cli.BoolFlag{
				Name:  flagCount,
				Usage: "only print page counts, read straight from disk",
			},
		},
		Action: func(cCtx *cli.Context) error {
			if cCtx.NArg() == 0 {
				return common.Fail(&workflow.InputValidationError{Field: "file", Message: workflow.MsgSelectFile}, "")
			}
			if cCtx.Bool(flagCount) {
				for _, path := range cCtx.Args().Slice() {
					n, err := pdfdoc.PageCountFile(path)
					if err != nil {
						return common.Fail(errors.WithStack(&workflow.DecodeError{File: path, Err: err}), workflow.MsgUnreadable)
					}
					fmt.Fprintf(cCtx.App.Writer, "%s\t%d\n", path, n)
				}
				return nil
			}

			rt, err := common.NewRuntime(common.Config(cCtx))
			if err != nil {
				return err
			}
			defer rt.Close()

			files := make([]workflow.SourceFile, 0, cCtx.NArg())
			for _, path := range cCtx.Args().Slice() {
				src, err := common.ReadSource(path)
				if err != nil {
					return err
				}
				f, err := rt.Assembler.Inspect(cCtx.Context, src)
				if err != nil {
					return common.Fail(errors.Wrapf(err, "inspect '%s'", path), workflow.MsgUnreadable)
				}
				files = append(files, f)
			}

			if cCtx.Bool(flagJSON) {
				enc := json.NewEncoder(cCtx.App.Writer)
				enc.SetIndent("", "  ")
				return errors.WithStack(enc.Encode(files))
			}
			for _, f := range files {
				fmt.Fprintf(cCtx.App.Writer, "%s\t%d pages\t%s\n", f.Name, f.Pages, humanize.Bytes(uint64(f.Size)))
			}
			return nil
		},
	}
}
