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

// Package common provides the record types shared by all Cardano eras.
//
// # Key Files by Purpose
//
// Interfaces:
//   - tx.go: Transaction, TransactionBody, TransactionInput, TransactionOutput
//   - era.go: Era and the era registry
//   - common.go: Block and BlockHeader, hash types
//
// Core Types:
//   - address.go: Shelley and Byron addresses, bech32 and base58 forms
//   - credentials.go: stake and payment credentials
//   - value.go: coin and multi-asset values
//   - certs.go: Shelley and Conway certificates
//   - gov.go: voting and proposal procedures, governance actions
//   - datum.go: datum options and datum hashes
//   - redeemer.go: redeemers in the array and map forms
//   - script.go: native scripts, Plutus scripts and reference scripts
//   - metadata.go: transaction metadata and auxiliary data
//   - witness.go: TransactionWitnessSet
//   - pparams.go: protocol parameter updates and cost models
//   - header.go: block header body in the legacy and Babbage layouts
//
// # Common Patterns
//
// Records embed cbor.StructAsArray (positional) or use keyasint tags (integer-keyed
// maps) and are decoded with cbor.DecodeRecord. Types that must hash their original
// bytes embed cbor.DecodeStoreCbor. Era packages wrap these types into their own
// transaction bodies and blocks.
package common
