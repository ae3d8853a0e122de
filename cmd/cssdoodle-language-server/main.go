package main

import (
	"flag"
	"fmt"
	"os"

	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/internal/version"
	"bennypowers.dev/cssdoodle/lsp"
)

func main() {
	showVersion := flag.Bool("version", false, "print the version and exit")
	level := flag.String("log-level", "info", "log level: debug, info, warn or error")
	flag.Bool("stdio", true, "communicate over standard input and output")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Banner("cssdoodle-language-server"))
		return
	}

	// stdout carries the protocol
	log.SetOutput(os.Stderr)
	if l, err := log.ParseLevel(*level); err != nil {
		log.Warn("%v", err)
	} else {
		log.SetLevel(l)
	}

	server, err := lsp.NewServer()
	if err != nil {
		log.Error("Failed to create LSP server: %v", err)
		os.Exit(1)
	}

	if err := server.RunStdio(); err != nil {
		log.Error("Server error: %v", err)
		os.Exit(1)
	}
}
