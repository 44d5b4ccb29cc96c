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
	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/plutus"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

const (
	CredentialTypeAddrKeyHash = 0
	CredentialTypeScriptHash  = 1
)

// Credential identifies a key or script by its hash. It is encoded as [type, hash]
type Credential struct {
	cbor.StructAsArray
	CredType   uint
	Credential Blake2b224
}

func NewKeyCredential(hash Blake2b224) Credential {
	return Credential{CredType: CredentialTypeAddrKeyHash, Credential: hash}
}

func NewScriptCredential(hash Blake2b224) Credential {
	return Credential{CredType: CredentialTypeScriptHash, Credential: hash}
}

func (c *Credential) UnmarshalCBOR(data []byte) error {
	if err := cbor.DecodeRecordBytes(data, "Credential", c); err != nil {
		return err
	}
	if c.CredType > CredentialTypeScriptHash {
		return cbor.NewFieldError(
			"Credential",
			"CredType",
			&cbor.InvalidTagError{Type: "Credential", Tag: uint64(c.CredType)},
		)
	}
	return nil
}

func (c *Credential) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeRecordBytes(c)
}

func (c Credential) Hash() Blake2b224 {
	return c.Credential
}

func (c Credential) IsScript() bool {
	return c.CredType == CredentialTypeScriptHash
}

func (c Credential) ToPlutusData() plutus.Data {
	return plutus.NewDataConstr(
		uint64(c.CredType),
		plutus.NewDataBytes(c.Credential.Bytes()),
	)
}

// StakeCredential is the credential used by stake certificates and reward accounts
type StakeCredential = Credential

func (c Credential) Utxorpc() *utxorpc.StakeCredential {
	ret := &utxorpc.StakeCredential{}
	switch c.CredType {
	case CredentialTypeAddrKeyHash:
		ret.StakeCredential = &utxorpc.StakeCredential_AddrKeyHash{
			AddrKeyHash: c.Credential.Bytes(),
		}
	case CredentialTypeScriptHash:
		ret.StakeCredential = &utxorpc.StakeCredential_ScriptHash{
			ScriptHash: c.Credential.Bytes(),
		}
	}
	return ret
}
