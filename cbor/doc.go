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

// Package cbor provides the CBOR primitives used by the ledger codecs.
//
// Simple records are decoded through fxamacker/cbor struct tags. Types that need the
// original bytes for hashing embed DecodeStoreCbor:
//
//	type MyType struct {
//	    cbor.StructAsArray
//	    cbor.DecodeStoreCbor
//	    Field1 uint64
//	}
//
//	func (t *MyType) UnmarshalCBOR(data []byte) error {
//	    return t.UnmarshalCbor(data, t)
//	}
//
// Records with several historical layouts are decoded by hand with a Reader, which
// advances only on success, and encoded with a Writer using minimal length headers.
// The generic combinators (Set, OptionalArray, TaggedOption, Nullable, Encoded,
// ListAsMap, BoundedBytes, BigInt) and the Sparse record cover the recurring ledger
// shapes.
package cbor
