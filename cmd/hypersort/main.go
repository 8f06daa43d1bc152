// Copyright 2025 go-hypersort Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command hypersort sorts integer files with a distributed hyperquicksort.
//
// Usage:
//
//	hypersort gen in.txt --n 1000000
//	hypersort sort in.txt out.txt 1 --np 8
//	hypersort check out.txt --input in.txt
//	hypersort bench --in in.txt --np 1,2,4,8 --strategy 1,2,3
//
// Multi-process runs use --transport tcp with a YAML hostfile (one
// process per line of the hostfile, each started with its --rank), or
// --transport mpi under mpirun when built with -tags mpi.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// app holds what every subcommand shares.
type app struct {
	log       *logrus.Logger
	printer   *message.Printer
	logLevel  string
	logFormat string
}

func newApp(stderr io.Writer) *app {
	log := logrus.New()
	log.SetOutput(stderr)
	return &app{
		log:     log,
		printer: message.NewPrinter(language.English),
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hypersort",
		Short:         "Distributed hyperquicksort of integer files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configureLogger()
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warning", "log level: trace, debug, info, warning, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "log format: text or json")
	root.AddCommand(a.sortCmd(), a.checkCmd(), a.genCmd(), a.benchCmd())
	return root
}

func (a *app) configureLogger() error {
	lvl, err := logrus.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}
	a.log.SetLevel(lvl)
	switch a.logFormat {
	case "text":
		a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		a.log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", a.logFormat)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	a := newApp(os.Stderr)
	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		a.log.WithError(err).Error("hypersort failed")
		stop()
		os.Exit(1)
	}
}
