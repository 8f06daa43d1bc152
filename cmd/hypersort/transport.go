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

package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/ajroetker/go-hypersort/hsort/comm"
	"github.com/ajroetker/go-hypersort/hsort/transport/mpi"
	"github.com/ajroetker/go-hypersort/hsort/transport/tcp"
)

const (
	transportLocal = "local"
	transportTCP   = "tcp"
	transportMPI   = "mpi"
)

// transportFlags selects where the ranks of a sort live.
type transportFlags struct {
	kind        string
	np          int
	hostfile    string
	rank        int
	dialTimeout time.Duration
}

func (f *transportFlags) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("transport", pflag.ContinueOnError)
	fs.StringVar(&f.kind, "transport", transportLocal, "transport: local, tcp or mpi")
	fs.IntVarP(&f.np, "np", "n", 1, "number of in-process ranks (local transport)")
	fs.StringVar(&f.hostfile, "hostfile", "", "YAML hostfile listing every rank's address (tcp transport)")
	fs.IntVar(&f.rank, "rank", -1, "this process's rank (tcp transport)")
	fs.DurationVar(&f.dialTimeout, "dial-timeout", 0, "mesh setup timeout (tcp transport, overrides the hostfile)")
	return fs
}

func (f *transportFlags) validate() error {
	switch f.kind {
	case transportLocal:
		if f.np < 1 {
			return fmt.Errorf("--np must be at least 1, got %d", f.np)
		}
	case transportTCP:
		if f.hostfile == "" {
			return errors.New("--transport tcp needs --hostfile")
		}
		if f.rank < 0 {
			return errors.New("--transport tcp needs --rank")
		}
	case transportMPI:
		if !mpi.Available {
			return mpi.ErrUnavailable
		}
	default:
		return fmt.Errorf("unknown transport %q", f.kind)
	}
	return nil
}

// open connects this process to a multi-process world. The returned
// function synchronizes with the other ranks and releases the transport.
func (a *app) open(ctx context.Context, f *transportFlags) (comm.Transport, func() error, error) {
	log := logrus.NewEntry(a.log)
	switch f.kind {
	case transportTCP:
		hf, err := tcp.LoadHostfile(f.hostfile)
		if err != nil {
			return nil, nil, err
		}
		timeout := hf.DialTimeout
		if f.dialTimeout > 0 {
			timeout = f.dialTimeout
		}
		tr, err := tcp.Connect(ctx, tcp.Config{
			Rank:        f.rank,
			Peers:       hf.Peers,
			DialTimeout: timeout,
			Logger:      log,
		})
		if err != nil {
			return nil, nil, err
		}
		return tr, finisher(ctx, tr), nil
	case transportMPI:
		// MPI_Init_thread and MPI_Finalize must run on the same thread.
		runtime.LockOSThread()
		tr, err := mpi.Init(log)
		if err != nil {
			runtime.UnlockOSThread()
			return nil, nil, err
		}
		done := finisher(ctx, tr)
		return tr, func() error {
			defer runtime.UnlockOSThread()
			return done()
		}, nil
	}
	return nil, nil, fmt.Errorf("transport %q is not multi-process", f.kind)
}

// finisher returns a function that waits for every rank at a barrier and
// closes tr, so no rank tears down a connection a peer still reads from.
func finisher(ctx context.Context, tr comm.Transport) func() error {
	return func() error {
		err := comm.World(tr, nil).Barrier(ctx)
		return errors.Join(err, tr.Close())
	}
}
