package main

import (
	"github.com/ftwtie/pdfmerger/internal/command"
	"github.com/ftwtie/pdfmerger/internal/command/info"
	"github.com/ftwtie/pdfmerger/internal/command/merge"
	"github.com/ftwtie/pdfmerger/internal/command/serve"
	"github.com/ftwtie/pdfmerger/internal/command/split"
)

func main() {
	command.Main(
		"pdfmerger", "merge and split PDF files on this machine",
		merge.Command(),
		split.Command(),
		info.Command(),
		serve.Command(),
	)
}
