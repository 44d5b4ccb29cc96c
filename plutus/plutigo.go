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

package plutus

import (
	"fmt"

	"github.com/blinklabs-io/plutigo/data"
)

// ToPlutigo converts a data value to its plutigo representation, for hosts that
// evaluate scripts with plutigo
func ToPlutigo(d Data) (data.PlutusData, error) {
	raw, err := EncodeDataBytes(d)
	if err != nil {
		return nil, err
	}
	ret, err := data.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("convert data to plutigo: %w", err)
	}
	return ret, nil
}

// FromPlutigo converts a plutigo data value
func FromPlutigo(pd data.PlutusData) (Data, error) {
	raw, err := data.Encode(pd)
	if err != nil {
		return nil, fmt.Errorf("convert data from plutigo: %w", err)
	}
	return DecodeDataBytes(raw)
}
