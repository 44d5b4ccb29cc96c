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
	"crypto/ed25519"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
)

type VkeyWitness struct {
	cbor.StructAsArray
	Vkey      VerificationKey
	Signature Signature
}

// KeyHash returns the hash of the witness verification key, as used in addresses and
// required signers
func (w VkeyWitness) KeyHash() Blake2b224 {
	return w.Vkey.Hash()
}

// Verify checks the witness signature over a transaction body hash
func (w VkeyWitness) Verify(txHash Blake2b256) bool {
	return ed25519.Verify(w.Vkey.Bytes(), txHash.Bytes(), w.Signature.Bytes())
}

// BootstrapWitness witnesses a Byron address spend
type BootstrapWitness struct {
	cbor.StructAsArray
	PublicKey  VerificationKey
	Signature  Signature
	ChainCode  []byte
	Attributes []byte
}

func (w BootstrapWitness) Verify(txHash Blake2b256) bool {
	return ed25519.Verify(w.PublicKey.Bytes(), txHash.Bytes(), w.Signature.Bytes())
}

// ByronAddress reconstructs the Byron address the witness spends from
func (w BootstrapWitness) ByronAddress() (Address, error) {
	attr := ByronAddressAttributes{}
	if err := attr.UnmarshalCBOR(w.Attributes); err != nil {
		return Address{}, err
	}
	xvk := make([]byte, 0, 64)
	xvk = append(xvk, w.PublicKey.Bytes()...)
	xvk = append(xvk, w.ChainCode...)
	return NewByronAddressFromKey(xvk, attr)
}
