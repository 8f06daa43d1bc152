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

// Package mpi runs a world on MPI_COMM_WORLD.
//
// The binding is built only with the "mpi" build tag and needs an MPI
// implementation's headers and libraries (for example via
// CGO_CFLAGS/CGO_LDFLAGS or an mpicc wrapper as CC). Without the tag,
// Init returns ErrUnavailable.
//
// Every message travels as MPI bytes on a single MPI tag. The first 8
// bytes of each message carry the comm.Tag, so group and local tags are
// not limited by MPI_TAG_UB. A progress goroutine drains incoming
// messages into a comm.Mailbox, and all MPI calls are serialized under
// one lock, so the library only needs MPI_THREAD_SERIALIZED.
package mpi

import "errors"

// ErrUnavailable is returned by Init when the binary was built without
// MPI support.
var ErrUnavailable = errors.New("mpi: support not compiled in (build with -tags mpi)")
