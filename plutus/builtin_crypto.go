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
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
	"golang.org/x/crypto/sha3"
)

var errInvalidKeyLength = errors.New("invalid key or signature length")

func hashWith(args []value, h hash.Hash) (value, error) {
	bs, err := unwrapByteString(args[0])
	if err != nil {
		return nil, err
	}
	h.Write(bs)
	return NewByteString(h.Sum(nil)), nil
}

func sha2_256(_ *Machine, args []value) (value, error) {
	return hashWith(args, sha256.New())
}

func sha3_256(_ *Machine, args []value) (value, error) {
	return hashWith(args, sha3.New256())
}

func keccak_256(_ *Machine, args []value) (value, error) {
	return hashWith(args, sha3.NewLegacyKeccak256())
}

func blake2b_256(_ *Machine, args []value) (value, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	return hashWith(args, h)
}

func blake2b_224(_ *Machine, args []value) (value, error) {
	h, err := blake2b.New(28, nil)
	if err != nil {
		return nil, err
	}
	return hashWith(args, h)
}

func ripemd_160(_ *Machine, args []value) (value, error) {
	return hashWith(args, ripemd160.New())
}

// signatureArgs unwraps the key, message and signature arguments of a signature check
func signatureArgs(args []value) ([]byte, []byte, []byte, error) {
	key, msg, err := unwrapByteStrings(args)
	if err != nil {
		return nil, nil, nil, err
	}
	sig, err := unwrapByteString(args[2])
	if err != nil {
		return nil, nil, nil, err
	}
	return key, msg, sig, nil
}

func verifyEd25519Signature(_ *Machine, args []value) (value, error) {
	key, msg, sig, err := signatureArgs(args)
	if err != nil {
		return nil, err
	}
	if len(key) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return nil, fmt.Errorf(
			"%w: key %d bytes, signature %d bytes",
			errInvalidKeyLength,
			len(key),
			len(sig),
		)
	}
	// Keys that are not valid curve points never verify
	if _, err := new(edwards25519.Point).SetBytes(key); err != nil {
		return NewBool(false), nil
	}
	return NewBool(ed25519.Verify(ed25519.PublicKey(key), msg, sig)), nil
}

func verifyEcdsaSecp256k1Signature(_ *Machine, args []value) (value, error) {
	key, msg, sig, err := signatureArgs(args)
	if err != nil {
		return nil, err
	}
	if len(key) != btcec.PubKeyBytesLenCompressed || len(msg) != 32 || len(sig) != 64 {
		return nil, fmt.Errorf(
			"%w: key %d bytes, message %d bytes, signature %d bytes",
			errInvalidKeyLength,
			len(key),
			len(msg),
			len(sig),
		)
	}
	pub, err := btcec.ParsePubKey(key)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	var r, s btcec.ModNScalar
	if r.SetByteSlice(sig[:32]) || s.SetByteSlice(sig[32:]) {
		return nil, errors.New("signature component out of range")
	}
	// Only the low-S form of a signature is accepted
	if s.IsOverHalfOrder() {
		return NewBool(false), nil
	}
	return NewBool(ecdsa.NewSignature(&r, &s).Verify(msg, pub)), nil
}

func verifySchnorrSecp256k1Signature(_ *Machine, args []value) (value, error) {
	key, msg, sig, err := signatureArgs(args)
	if err != nil {
		return nil, err
	}
	if len(key) != schnorr.PubKeyBytesLen || len(sig) != schnorr.SignatureSize {
		return nil, fmt.Errorf(
			"%w: key %d bytes, signature %d bytes",
			errInvalidKeyLength,
			len(key),
			len(sig),
		)
	}
	pub, err := schnorr.ParsePubKey(key)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	parsed, err := schnorr.ParseSignature(sig)
	if err != nil {
		return NewBool(false), nil
	}
	return NewBool(parsed.Verify(msg, pub)), nil
}
