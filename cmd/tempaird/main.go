package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"

	"github.com/golang/glog"
	"github.com/google/gops/agent"

	"github.com/robotalks/tempair.go/pkg/env"
	fx "github.com/robotalks/tempair.go/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.NewConfig()
	if conf.GopsAddr != "" {
		if err := agent.Listen(agent.Options{Addr: conf.GopsAddr}); err != nil {
			log.Fatalln(err)
		}
		defer agent.Close()
	}

	runner := fx.NewRunner().HandleSignals()
	e := conf.MustNewEnv(runner.Context)
	defer e.Close()

	err := runner.Go(fx.NamedRun("node", e)).Wait()
	if err != nil && err != context.Canceled {
		glog.Error(err)
	}
}
