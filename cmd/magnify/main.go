package main

import (
	"flag"
	"log"

	"magnify/internal/config"
	"magnify/internal/ui"
)

var dataDirFlag = flag.String("datadir", "", "Directory holding the photo index and files (default: user config dir)")

func main() {
	flag.Parse()
	log.SetPrefix("Magnify ")

	config.LoadEnvFile()
	ui.CreateApplication(*dataDirFlag)
}
