// Main entry point for the application
package main

import (
	"flag"
	"log"

	"magnify/internal/config"
	"magnify/internal/ui"
)

func main() {
	dataDir := flag.String("datadir", "", "Directory holding the photo index and files")
	flag.Parse()
	log.SetPrefix("Magnify ")

	config.LoadEnvFile()
	ui.CreateApplication(*dataDir)
}
