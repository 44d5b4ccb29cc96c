// Copyright 2026 Blink Labs Software
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

package common

import (
	"fmt"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
)

// Protocol version constants for Cardano hard forks.
// These correspond to the major protocol version numbers.
const (
	ProtocolVersionShelley uint = 2
	ProtocolVersionAllegra uint = 3
	ProtocolVersionMary    uint = 4
	ProtocolVersionAlonzo  uint = 6
	ProtocolVersionBabbage uint = 8
	ProtocolVersionConway  uint = 9
	ProtocolVersionPlomin  uint = 10
)

type ProtocolVersion struct {
	cbor.StructAsArray
	Major uint
	Minor uint
}

func (p ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d", p.Major, p.Minor)
}

// AtLeast returns true if the version is the same as or newer than major.minor
func (p ProtocolVersion) AtLeast(major, minor uint) bool {
	if p.Major != major {
		return p.Major > major
	}
	return p.Minor >= minor
}
