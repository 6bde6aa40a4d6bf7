package main

import (
	"github.com/robotalks/tempair.go/pkg/cli/sh"
	"github.com/robotalks/tempair.go/pkg/env"

	_ "github.com/robotalks/tempair.go/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
