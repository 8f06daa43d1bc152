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

package tcp

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Hostfile lists the listen address of every rank, indexed by rank.
//
//	peers:
//	  - node0:7100
//	  - node1:7100
//	dial_timeout: 30s
type Hostfile struct {
	Peers       []string      `yaml:"peers"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// LoadHostfile reads and validates a YAML hostfile.
func LoadHostfile(path string) (*Hostfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseHostfile(raw)
}

// ParseHostfile parses and validates YAML hostfile contents.
func ParseHostfile(raw []byte) (*Hostfile, error) {
	var h Hostfile
	if err := yaml.UnmarshalStrict(raw, &h); err != nil {
		return nil, fmt.Errorf("parse hostfile: %w", err)
	}
	if len(h.Peers) == 0 {
		return nil, errors.New("hostfile: no peers")
	}
	seen := make(map[string]int, len(h.Peers))
	for i, p := range h.Peers {
		if p == "" {
			return nil, fmt.Errorf("hostfile: peer %d has no address", i)
		}
		if j, ok := seen[p]; ok {
			return nil, fmt.Errorf("hostfile: peers %d and %d share address %s", j, i, p)
		}
		seen[p] = i
	}
	if h.DialTimeout < 0 {
		return nil, errors.New("hostfile: dial_timeout must be >= 0")
	}
	return &h, nil
}
