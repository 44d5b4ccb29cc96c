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

// Package test holds helpers shared by the codec tests
package test

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// DecodeHexString decodes a hex fixture, panicking on malformed input. Surrounding
// whitespace is ignored so fixtures can be wrapped in raw string literals
func DecodeHexString(hexData string) []byte {
	decoded, err := hex.DecodeString(strings.TrimSpace(hexData))
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// CborCodec is a value that can be decoded from and re-encoded to CBOR
type CborCodec interface {
	UnmarshalCBOR([]byte) error
	MarshalCBOR() ([]byte, error)
}

// RequireCborRoundTrip decodes data into dest and checks that encoding it again
// yields the original bytes
func RequireCborRoundTrip(t testing.TB, data []byte, dest CborCodec) {
	t.Helper()
	require.NoError(t, dest.UnmarshalCBOR(data), "decode")
	encoded, err := dest.MarshalCBOR()
	require.NoError(t, err, "encode")
	require.Equal(
		t,
		hex.EncodeToString(data),
		hex.EncodeToString(encoded),
		"round trip mismatch",
	)
}
