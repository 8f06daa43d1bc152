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

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// rootGroupID identifies the world group. Children of group g get ids
// 2g (low) and 2g+1 (high), so every group of a split tree has a distinct
// id and their tags never collide.
const rootGroupID = 1

// Group is the set of ranks cooperating on one sub-problem.
type Group struct {
	t       Transport
	id      uint64
	members []int // world ranks, ordered by rank in the parent
	rank    int
	parent  *Group
	log     *logrus.Entry
}

// World returns the root group spanning every rank of t. A nil log
// discards output.
func World(t Transport, log *logrus.Entry) *Group {
	if log == nil {
		log = DiscardLogger()
	}
	members := make([]int, t.Size())
	for i := range members {
		members[i] = i
	}
	return &Group{
		t:       t,
		id:      rootGroupID,
		members: members,
		rank:    t.Rank(),
		log:     log.WithField("rank", t.Rank()),
	}
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// Rank returns this process's rank within the group.
func (g *Group) Rank() int { return g.rank }

// Size returns the number of members.
func (g *Group) Size() int { return len(g.members) }

// ID returns the group id.
func (g *Group) ID() uint64 { return g.id }

// Parent returns the group g was split from, or nil for the world.
func (g *Group) Parent() *Group { return g.parent }

// Transport returns the underlying transport.
func (g *Group) Transport() Transport { return g.t }

// Logger returns the group's logger, annotated with the world rank.
func (g *Group) Logger() *logrus.Entry { return g.log }

// WorldRank translates a group-local rank into a world rank.
func (g *Group) WorldRank(r int) int { return g.members[r] }

// Members returns a copy of the member world ranks.
func (g *Group) Members() []int {
	return append([]int(nil), g.members...)
}

// Depth returns the number of splits between the world and g.
func (g *Group) Depth() int {
	d := 0
	for p := g.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Abort fails every blocking call on every rank of the world.
func (g *Group) Abort(err error) { g.t.Abort(err) }

func (g *Group) checkRank(r int) error {
	if r < 0 || r >= len(g.members) {
		return fmt.Errorf("%w: %d not in group of size %d", ErrBadRank, r, len(g.members))
	}
	return nil
}

// Split partitions the group into two fresh sub-groups: members passing
// low == true form one, the rest the other. Members keep their relative
// order. Split is collective: every member must call it. The receiver is
// left unchanged.
func (g *Group) Split(ctx context.Context, low bool) (*Group, error) {
	color := int64(1)
	if low {
		color = 0
	}
	colors, err := g.Allgather(ctx, []int64{color})
	if err != nil {
		return nil, fmt.Errorf("split group %d: %w", g.id, err)
	}

	child := &Group{
		t:      g.t,
		id:     g.id*2 + uint64(color),
		parent: g,
		log:    g.log,
	}
	for r, c := range colors {
		if len(c) != 1 {
			return nil, fmt.Errorf("split group %d: %w: color of rank %d has %d values", g.id, ErrSizeMismatch, r, len(c))
		}
		if c[0] != color {
			continue
		}
		if r == g.rank {
			child.rank = len(child.members)
		}
		child.members = append(child.members, g.members[r])
	}

	g.log.WithFields(logrus.Fields{
		"group":  g.id,
		"child":  child.id,
		"size":   len(child.members),
		"member": child.rank,
	}).Debug("split group")
	return child, nil
}
