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

const (
	VrfOutputSize    = 64
	VrfProofSize     = 80
	KesVkeySize      = 32
	headerLegacyLen  = 15
	headerBabbageLen = 10
)

// VrfCert is a VRF output and its proof
type VrfCert struct {
	Output [VrfOutputSize]byte
	Proof  [VrfProofSize]byte
}

func (v *VrfCert) Decode(rd *cbor.Reader) error {
	n, err := rd.ExpectArray(2, 2)
	if err != nil {
		return err
	}
	output, err := rd.ReadFixedBytes(VrfOutputSize)
	if err != nil {
		return cbor.NewFieldError("VrfCert", "output", err)
	}
	proof, err := rd.ReadFixedBytes(VrfProofSize)
	if err != nil {
		return cbor.NewFieldError("VrfCert", "proof", err)
	}
	copy(v.Output[:], output)
	copy(v.Proof[:], proof)
	if n < 0 {
		return rd.ReadBreak()
	}
	return nil
}

func (v *VrfCert) Encode(w *cbor.Writer) {
	w.WriteArrayHeader(2)
	w.WriteBytes(v.Output[:])
	w.WriteBytes(v.Proof[:])
}

// OperationalCert delegates block signing to a hot KES key
type OperationalCert struct {
	HotVkey        [KesVkeySize]byte
	SequenceNumber uint64
	KesPeriod      uint64
	Signature      Signature
}

func (o *OperationalCert) decodeFields(rd *cbor.Reader) error {
	hotVkey, err := rd.ReadFixedBytes(KesVkeySize)
	if err != nil {
		return cbor.NewFieldError("OperationalCert", "hot_vkey", err)
	}
	copy(o.HotVkey[:], hotVkey)
	if o.SequenceNumber, err = rd.ReadUint(); err != nil {
		return cbor.NewFieldError("OperationalCert", "sequence_number", err)
	}
	if o.KesPeriod, err = rd.ReadUint(); err != nil {
		return cbor.NewFieldError("OperationalCert", "kes_period", err)
	}
	sig, err := rd.ReadFixedBytes(len(o.Signature))
	if err != nil {
		return cbor.NewFieldError("OperationalCert", "sigma", err)
	}
	copy(o.Signature[:], sig)
	return nil
}

func (o *OperationalCert) encodeFields(w *cbor.Writer) {
	w.WriteBytes(o.HotVkey[:])
	w.WriteUint(o.SequenceNumber)
	w.WriteUint(o.KesPeriod)
	w.WriteBytes(o.Signature[:])
}

// HeaderBody is the Shelley family block header body. Before Babbage it is a flat
// 15 element array with separate nonce and leader VRF certificates. From Babbage on it
// has 10 elements with a single VRF result and nested operational certificate and
// protocol version
type HeaderBody struct {
	BlockNumber     uint64
	Slot            uint64
	PrevHash        *Blake2b256
	IssuerVkey      VerificationKey
	VrfKey          [32]byte
	LeaderVrf       VrfCert
	NonceVrf        VrfCert
	BlockBodySize   uint64
	BlockBodyHash   Blake2b256
	OpCert          OperationalCert
	ProtocolVersion ProtocolVersion
	legacy          bool
}

func (h *HeaderBody) Decode(rd *cbor.Reader) error {
	n, err := rd.ExpectArray(headerBabbageLen, headerLegacyLen)
	if err != nil {
		return cbor.NewFieldError("HeaderBody", "length", err)
	}
	if n >= 0 && n != headerBabbageLen && n != headerLegacyLen {
		return fmt.Errorf("%w: HeaderBody has %d elements", cbor.ErrInvalidLength, n)
	}
	*h = HeaderBody{}
	if h.BlockNumber, err = rd.ReadUint(); err != nil {
		return cbor.NewFieldError("HeaderBody", "block_number", err)
	}
	if h.Slot, err = rd.ReadUint(); err != nil {
		return cbor.NewFieldError("HeaderBody", "slot", err)
	}
	if rd.IsNull() {
		if err := rd.ReadNull(); err != nil {
			return err
		}
	} else {
		prevHash, err := rd.ReadFixedBytes(Blake2b256Size)
		if err != nil {
			return cbor.NewFieldError("HeaderBody", "prev_hash", err)
		}
		tmpHash := NewBlake2b256(prevHash)
		h.PrevHash = &tmpHash
	}
	issuerVkey, err := rd.ReadFixedBytes(len(h.IssuerVkey))
	if err != nil {
		return cbor.NewFieldError("HeaderBody", "issuer_vkey", err)
	}
	copy(h.IssuerVkey[:], issuerVkey)
	vrfKey, err := rd.ReadFixedBytes(len(h.VrfKey))
	if err != nil {
		return cbor.NewFieldError("HeaderBody", "vrf_vkey", err)
	}
	copy(h.VrfKey[:], vrfKey)
	var firstVrf VrfCert
	if err := firstVrf.Decode(rd); err != nil {
		return cbor.NewFieldError("HeaderBody", "vrf_result", err)
	}
	// A second VRF certificate identifies the legacy layout
	if major, err := rd.PeekType(); err == nil && major == cbor.MajorArray {
		h.legacy = true
		h.NonceVrf = firstVrf
		if err := h.LeaderVrf.Decode(rd); err != nil {
			return cbor.NewFieldError("HeaderBody", "leader_vrf", err)
		}
	} else {
		// TODO: derive the nonce VRF output from the leader VRF output once the range
		// extension is implemented
		h.LeaderVrf = firstVrf
	}
	if h.legacy && n >= 0 && n != headerLegacyLen {
		return fmt.Errorf("%w: legacy HeaderBody has %d elements", cbor.ErrInvalidLength, n)
	}
	if !h.legacy && n >= 0 && n != headerBabbageLen {
		return fmt.Errorf("%w: HeaderBody has %d elements", cbor.ErrInvalidLength, n)
	}
	if h.BlockBodySize, err = rd.ReadUint(); err != nil {
		return cbor.NewFieldError("HeaderBody", "block_body_size", err)
	}
	bodyHash, err := rd.ReadFixedBytes(Blake2b256Size)
	if err != nil {
		return cbor.NewFieldError("HeaderBody", "block_body_hash", err)
	}
	h.BlockBodyHash = NewBlake2b256(bodyHash)
	if h.legacy {
		if err := h.OpCert.decodeFields(rd); err != nil {
			return err
		}
		if h.ProtocolVersion.Major, err = readUint(rd); err != nil {
			return cbor.NewFieldError("HeaderBody", "protocol_major", err)
		}
		if h.ProtocolVersion.Minor, err = readUint(rd); err != nil {
			return cbor.NewFieldError("HeaderBody", "protocol_minor", err)
		}
	} else {
		opCertLen, err := rd.ExpectArray(4, 4)
		if err != nil {
			return cbor.NewFieldError("HeaderBody", "operational_cert", err)
		}
		if err := h.OpCert.decodeFields(rd); err != nil {
			return err
		}
		if opCertLen < 0 {
			if err := rd.ReadBreak(); err != nil {
				return err
			}
		}
		if err := cbor.DecodeRecord(rd, "ProtocolVersion", &h.ProtocolVersion); err != nil {
			return cbor.NewFieldError("HeaderBody", "protocol_version", err)
		}
	}
	if n < 0 {
		return rd.ReadBreak()
	}
	return nil
}

func readUint(rd *cbor.Reader) (uint, error) {
	v, err := rd.ReadUint()
	return uint(v), err // #nosec G115
}

func (h *HeaderBody) Encode(w *cbor.Writer) error {
	if h.legacy {
		w.WriteArrayHeader(headerLegacyLen)
	} else {
		w.WriteArrayHeader(headerBabbageLen)
	}
	w.WriteUint(h.BlockNumber)
	w.WriteUint(h.Slot)
	if h.PrevHash == nil {
		w.WriteNull()
	} else {
		w.WriteBytes(h.PrevHash.Bytes())
	}
	w.WriteBytes(h.IssuerVkey[:])
	w.WriteBytes(h.VrfKey[:])
	if h.legacy {
		h.NonceVrf.Encode(w)
	}
	h.LeaderVrf.Encode(w)
	w.WriteUint(h.BlockBodySize)
	w.WriteBytes(h.BlockBodyHash.Bytes())
	if h.legacy {
		h.OpCert.encodeFields(w)
		w.WriteUint(uint64(h.ProtocolVersion.Major))
		w.WriteUint(uint64(h.ProtocolVersion.Minor))
		return nil
	}
	w.WriteArrayHeader(4)
	h.OpCert.encodeFields(w)
	return cbor.EncodeRecord(w, &h.ProtocolVersion)
}

// IsLegacy returns true for the 15 element layout used before Babbage
func (h *HeaderBody) IsLegacy() bool {
	return h.legacy
}

// SetLegacy selects the layout used when encoding
func (h *HeaderBody) SetLegacy(legacy bool) {
	h.legacy = legacy
}

// NonceVrfProvisional returns true when NonceVrf is a zero placeholder rather than a
// value read from the header
func (h *HeaderBody) NonceVrfProvisional() bool {
	return !h.legacy
}

// Header is a Shelley family block header: the body and its KES signature
type Header struct {
	cbor.DecodeStoreCbor
	Body      HeaderBody
	Signature []byte
}

func (h *Header) Decode(rd *cbor.Reader) error {
	start := rd.Offset()
	n, err := rd.ExpectArray(2, 2)
	if err != nil {
		return cbor.NewFieldError("Header", "length", err)
	}
	if err := h.Body.Decode(rd); err != nil {
		return cbor.NewFieldError("Header", "body", err)
	}
	if h.Signature, err = rd.ReadBytes(); err != nil {
		return cbor.NewFieldError("Header", "body_signature", err)
	}
	if n < 0 {
		if err := rd.ReadBreak(); err != nil {
			return err
		}
	}
	h.SetCbor(rd.Data()[start:rd.Offset()])
	return nil
}

func (h *Header) UnmarshalCBOR(data []byte) error {
	return DecodeExact(data, h)
}

func (h *Header) MarshalCBOR() ([]byte, error) {
	if h.Cbor() != nil {
		return h.Cbor(), nil
	}
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	if err := h.Body.Encode(w); err != nil {
		return nil, err
	}
	w.WriteBytes(h.Signature)
	return w.Bytes(), nil
}

// Hash returns the header hash, which is the block hash
func (h *Header) Hash() Blake2b256 {
	raw, err := h.MarshalCBOR()
	if err != nil {
		return Blake2b256{}
	}
	return Blake2b256Hash(raw)
}

func (h *Header) BlockNumber() uint64 {
	return h.Body.BlockNumber
}

func (h *Header) SlotNumber() uint64 {
	return h.Body.Slot
}

func (h *Header) PrevHash() *Blake2b256 {
	return h.Body.PrevHash
}

// IssuerPoolId returns the pool that issued the block
func (h *Header) IssuerPoolId() PoolId {
	return PoolId(h.Body.IssuerVkey.Hash())
}
