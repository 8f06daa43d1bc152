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

package hsort

import "errors"

var (
	// ErrBadStrategy is returned for an unknown pivot strategy.
	ErrBadStrategy = errors.New("hsort: unknown pivot strategy")

	// ErrLostElements is returned when the coordinator's final array does
	// not hold exactly the number of elements that were scattered.
	ErrLostElements = errors.New("hsort: element count changed during sort")

	// ErrBadHeader is returned for a negative length header.
	ErrBadHeader = errors.New("hsort: invalid length header")
)
