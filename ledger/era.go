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

package ledger

import (
	"github.com/carloskiki/pallas-extras-sub001/ledger/allegra"
	"github.com/carloskiki/pallas-extras-sub001/ledger/alonzo"
	"github.com/carloskiki/pallas-extras-sub001/ledger/babbage"
	"github.com/carloskiki/pallas-extras-sub001/ledger/byron"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/carloskiki/pallas-extras-sub001/ledger/conway"
	"github.com/carloskiki/pallas-extras-sub001/ledger/mary"
	"github.com/carloskiki/pallas-extras-sub001/ledger/shelley"
)

type Era = common.Era

var (
	EraByron   = byron.EraByron
	EraShelley = shelley.EraShelley
	EraAllegra = allegra.EraAllegra
	EraMary    = mary.EraMary
	EraAlonzo  = alonzo.EraAlonzo
	EraBabbage = babbage.EraBabbage
	EraConway  = conway.EraConway
)

// Eras lists the supported eras in hard fork order
var Eras = []Era{
	EraByron,
	EraShelley,
	EraAllegra,
	EraMary,
	EraAlonzo,
	EraBabbage,
	EraConway,
}

// GetEraById returns the era with the given id, or nil if it is unknown
func GetEraById(eraId uint8) *Era {
	era := common.EraById(eraId)
	if era == common.EraInvalid {
		return nil
	}
	return &era
}

// EraForBlockType returns the era of a block envelope tag
func EraForBlockType(blockType uint) (Era, error) {
	switch blockType {
	case BlockTypeByronEbb, BlockTypeByronMain:
		return EraByron, nil
	case BlockTypeShelley:
		return EraShelley, nil
	case BlockTypeAllegra:
		return EraAllegra, nil
	case BlockTypeMary:
		return EraMary, nil
	case BlockTypeAlonzo:
		return EraAlonzo, nil
	case BlockTypeBabbage:
		return EraBabbage, nil
	case BlockTypeConway:
		return EraConway, nil
	}
	return common.EraInvalid, unknownBlockType(blockType)
}
