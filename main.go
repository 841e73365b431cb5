package main

import (
	"log"

	_ "github.com/anoixa/tierbed/docs"

	"github.com/anoixa/tierbed/config"

	"github.com/anoixa/tierbed/cmd"
)

func main() {
	log.Printf("tierbed %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
