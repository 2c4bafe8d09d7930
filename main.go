// Package main is the entry point for the segrab application.
package main

import (
	"github.com/samber/lo"
	"github.com/segrab-cli/segrab/cmd"
	"github.com/segrab-cli/segrab/config"
	"github.com/segrab-cli/segrab/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())
	cmd.Execute()
}
