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

// Package comm is the message-passing layer of the distributed sort.
//
// A Transport moves opaque byte payloads between the ranks 0..P-1 of one
// world. Messages are addressed by (source, Tag) and delivered in FIFO order
// per address, so two messages with the same source and tag can never
// overtake each other. Receivers learn a payload's exact length with Probe
// before allocating for it.
//
// A Group is an explicit value over a Transport: an ordered list of member
// world ranks, this process's rank within that list, a group id that keeps
// the tags of sibling groups apart, and a link to the parent group. Groups
// are never mutated; Split returns a fresh child.
//
// On top of the point-to-point operations (Send, Isend, Probe, Recv, Irecv)
// the package provides the collectives the sort needs: Bcast, Gather,
// Allgather, Scatterv, ReduceMax and Barrier. Every member of a group must
// call a collective in the same order.
//
// Errors are fatal. A rank that fails calls Abort, which unblocks every
// rank of the world with an error wrapping ErrAborted.
package comm
