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

package comm

import "errors"

var (
	// ErrAborted is returned by blocking calls after the world was aborted.
	ErrAborted = errors.New("comm: world aborted")

	// ErrPeerLost is returned when a peer's connection ended before the
	// awaited message arrived.
	ErrPeerLost = errors.New("comm: peer lost")

	// ErrSizeMismatch is returned when a receive buffer does not match
	// the length of the pending message.
	ErrSizeMismatch = errors.New("comm: message size mismatch")

	// ErrBadRank is returned for a peer or root outside the group.
	ErrBadRank = errors.New("comm: rank out of range")

	// ErrReservedTag is returned when user code sends on a tag reserved
	// for collectives.
	ErrReservedTag = errors.New("comm: tag reserved for collectives")
)
