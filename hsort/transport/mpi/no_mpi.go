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

//go:build !mpi

package mpi

import (
	"github.com/sirupsen/logrus"

	"github.com/ajroetker/go-hypersort/hsort/comm"
)

// Available reports whether MPI support is compiled in.
const Available = false

// Init always fails without the mpi build tag.
func Init(*logrus.Entry) (comm.Transport, error) {
	return nil, ErrUnavailable
}
