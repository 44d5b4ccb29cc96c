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

import "sync"

// Era identifies a ledger era. Ids follow the order of the hard forks, starting at 0 for
// Byron
type Era struct {
	Id   uint8
	Name string
}

var EraInvalid = Era{
	Id:   0xff,
	Name: "invalid",
}

var (
	eras      = map[uint8]Era{}
	erasMutex sync.RWMutex
)

// RegisterEra makes an era available to EraById. Era packages call it from init
func RegisterEra(era Era) {
	erasMutex.Lock()
	defer erasMutex.Unlock()
	eras[era.Id] = era
}

func EraById(eraId uint8) Era {
	erasMutex.RLock()
	defer erasMutex.RUnlock()
	era, ok := eras[eraId]
	if !ok {
		return EraInvalid
	}
	return era
}

func (e Era) String() string {
	return e.Name
}

// Block is implemented by the block types of every era
type Block interface {
	BlockHeader
	Header() BlockHeader
	Transactions() []Transaction
}

// BlockHeader is implemented by the block header types of every era
type BlockHeader interface {
	Hash() Blake2b256
	PrevHash() *Blake2b256
	BlockNumber() uint64
	SlotNumber() uint64
	Era() Era
	Cbor() []byte
}
