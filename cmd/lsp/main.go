package main

import (
	"log"
	"os"

	"github.com/mattn/go-isatty"
)

func main() {
	log.SetFlags(0)          // Disable timestamp in logs
	log.SetOutput(os.Stderr) // Log to stderr, not stdout (stdout is for LSP protocol)

	// Color the prefix when stderr is a terminal (editors usually capture
	// it into a log pane, where escape codes would be noise).
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		log.SetPrefix("\x1b[36m[rhoscope]\x1b[0m ")
	} else {
		log.SetPrefix("[rhoscope] ")
	}

	server := NewLanguageServer(os.Stdout)
	server.Start()
}
