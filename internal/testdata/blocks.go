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

// Package testdata provides shared block fixtures for tests and benchmarks
package testdata

import (
	"encoding/hex"
	"strings"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
)

// Block types as used in the [era, block] envelope
const (
	BlockTypeByronEbb  = 0
	BlockTypeByronMain = 1
	BlockTypeShelley   = 2
	BlockTypeAllegra   = 3
	BlockTypeMary      = 4
	BlockTypeAlonzo    = 5
	BlockTypeBabbage   = 6
	BlockTypeConway    = 7
)

// Byron block from mainnet
// https://cexplorer.io/block/1451a0dbf16cfeddf4991a838961df1b08a68f43a19c0eb3b36cc4029c77a2d8
const (
	ByronBlockHex  = "83851a2d964a09582025df38df102b89ec25a432a2972993d2fa8cc1f597a73e6260b2f07e79501eb084830258200f284bc22f5b96228ee0687b7bb87c56132f77df4235c78a1595729ccfce2001582019fb988d02ec920a6de5ac71c5d5e75f8b73d7ed8e8abea7773e28859983206e82035820d36a2619a672494604e11bb447cbcf5231e9f2ba25c2169177edc941bd50ad6c5820afc0da64183bf2664f3d4eec7238d524ba607faeeab24fc100eb861dba69971b58204e66280cd94d591072349bec0a3090a53aa945562efb6d08d56e53654b0e4098848218cf0758401bc97a2fe02c297880ce8ecfd997fe4c1ec09ee10feeee9f686760166b05281d6283468ffd93becb0c956ccddd642df9b1244c915911185fa49355f6f22bfab9811a004430ed820282840058401bc97a2fe02c297880ce8ecfd997fe4c1ec09ee10feeee9f686760166b05281d6283468ffd93becb0c956ccddd642df9b1244c915911185fa49355f6f22bfab9584061261a95b7613ee6bf2067dad77b70349729b0c50d57bc1cf30de0db4a1e73a885d0054af7c23fc6c37919dba41c602a57e2d0f9329a7954b867338d6fb2c9455840e03e62f083df5576360e60a32e22bbb07b3c8df4fcab8079f1d6f61af3954d242ba8a06516c395939f24096f3df14e103a7d9c2b80a68a9363cf1f27c7a4e3075840325068a2307397703c4eebb1de1ecab0b23c24a5e80c985e0f7546bb6571ee9eb94069708fc25ec67a4a5753a0d49ab5e536131c19c7f9dd4fd32532fd0f71028483010000826a63617264616e6f2d736c01a058204ba92aa320c60acc9ad7b9a64f2eda55c4d2ec28e604faf186708b4f0c4e8edf849f82839f8200d8185824825820b0a7782d21f37e9d98f4cbdc23bf2677d93eca1ac0fb3f79923863a698d53f8f018200d81858248258205bd3e8385d2ecdd17d3b602263e8a5e7aa0edb4dd00221f369c2720f7d85940d008200d81858248258201e4a77f8375548e5bc409a518dbcb4a8437b539682f4e840f4a1056f01cea566008200d81858248258205e83b53253f705c214d904f65fdaaa2f153db59a229a9cee1da6c329b543236100ff9f8282d818584283581ca1932430cb1ad6482a1b67964d778c18b574674fda151cdfa73c63cda101581e581cfc8a0b5477e819a27a34910e6c174b50b871192e95cca1a711bbceb3001abcb52f6d1b000000013446d5718282d818584283581c093916f7e775fba80eaa65cded085d985f7f9e4982cddd2bb7c476aea101581e581c83d3e2df30edf90acf198b85a7327d964f9d92fd739d0c986a914f6c001a27a611b61a000c48cbffa0848200d8185885825840a781c060f2b32d116ef79bb1823d4a25ea36f6c130b3a182713739ea1819e32d261db3dce30b15c29db81d1c284d3fe350d12241e8ccc65cdf08adba90e0ad4558408eb4c9549a6a044d687d6c04fdee2240994f43966ef113ebb3e76a756e39472badb137c3e0268d34ce6042f76c2534220cc1e061a1a29cce065faf486184cf078200d818588582584085dc150754227f68d1640887f8fa57c93e4cad3499f2cb7b5e8258b0b367dcceaa42bf9ea1cfff73fd0fab44d9e0a36ef61bc5d0f294365316a4e0ed12b40a135840f1233519fa85f3ecbb2deaa9dff2d7e943156d49a7a33603381f2c1779b7f65ea0d39a8dcdd227f5d69b9355ab35df0c43c2abb751c6dd24b107a2c7ac51f5088200d81858858258403559467e9b4a4e47af0388e7224358197e5d39c57c71c391db4a7d480f297d8b86b0746de21dc5dfca2bd8b8fa817c1fa1c3bd3eeaddbfd7a6b270564e416d0c5840b0e33544dcb1895b592a612f5be81242a88226d0612da76099b653f89ce7c5641af14fad696ccd44b58744915291240224fd83a26f103c0717752ea256b4af0b8200d8185885825840572c3ea039ded80f19b0d6841e9ad0d0d1b73242ac98538affbec6e7356192f48eba0291ea1b174f9c42e139ba85ce75656a036ba0993dda605d5a62956dba6558406257e3a27a896268cade4d5371537ed606d3004d6269f87ebe6056b6eff737a2a9ef82d27ba1f9b642ffc622ec27b38e69ed41e272d3de0767cad860d50fa10d82839f8200d8185824825820779a319e0d64b80eaff5ed13d08062b8672fc71ac27e7b30574c1c7972764de202ff9f8282d818582183581c2c0dd53d4e6001e006729fc09d74c5a799d5f93c9f4b74748412a823a0001a1abd89081a769cfd808282d818582183581c05b073f36ee030589a31148838cd47e8d8c8f82fec9fe091c7d53cd8a0001a0c5f26b11b00000016bc0c4c47ffa0818200d8185885825840f129f07bbfd87fd1d3ff5fb32e9a5566e02208f89518e9994048add22074f433424e682a392581268c7544e34e9c54378a8820bdcf7dddce30490bbb2d363b4b5840709a2e70d3803554a15d788235bf56c9567407102be375be5071fa81d4c137047743b5f5abefdbab6b2781822474995dff917213c962ecd111619d75b8534f0aff8203d90102809fff82809fff81a0"
	ByronBlockHash = "1451a0dbf16cfeddf4991a838961df1b08a68f43a19c0eb3b36cc4029c77a2d8"
	ByronBlockSlot = 4471207
)

// TestBlock is a block with its envelope tag
type TestBlock struct {
	Name      string
	BlockType uint
	Cbor      []byte
}

// Envelope returns the block wrapped as [era, block]
func (b TestBlock) Envelope() []byte {
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteUint(uint64(b.BlockType))
	w.WriteRaw(b.Cbor)
	return w.Bytes()
}

// GetTestBlocks returns one block per block type. The Byron main block comes from
// mainnet and the others are built by BuildBlock
func GetTestBlocks() []TestBlock {
	ret := []TestBlock{
		{
			Name:      "ByronEbb",
			BlockType: BlockTypeByronEbb,
			Cbor:      BuildByronBoundaryBlock(208),
		},
		{
			Name:      "Byron",
			BlockType: BlockTypeByronMain,
			Cbor:      MustDecodeHex(ByronBlockHex),
		},
	}
	names := []string{"Shelley", "Allegra", "Mary", "Alonzo", "Babbage", "Conway"}
	for i, name := range names {
		blockType := uint(BlockTypeShelley + i) // #nosec G115
		ret = append(ret, TestBlock{
			Name:      name,
			BlockType: blockType,
			Cbor: BuildBlock(BlockSpec{
				BlockType:   blockType,
				BlockNumber: 100 + uint64(i),
				Slot:        1000 * uint64(i+1),
				TxCount:     2,
			}),
		})
	}
	return ret
}

// MustDecodeHex decodes a hex string to bytes, panicking on error
func MustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		panic(err)
	}
	return b
}

// BuildByronBoundaryBlock builds an epoch boundary block for the given epoch
func BuildByronBoundaryBlock(epoch uint64) []byte {
	w := cbor.NewWriter()
	w.WriteArrayHeader(3)
	// Header
	w.WriteArrayHeader(5)
	w.WriteUint(764824073)
	w.WriteBytes(filled(32, 0xee))
	w.WriteBytes(filled(32, 0xdd))
	w.WriteArrayHeader(2)
	w.WriteUint(epoch)
	w.WriteArrayHeader(1)
	w.WriteUint(epoch * 21600)
	w.WriteArrayHeader(1)
	w.WriteMapHeader(0)
	// Stakeholder ids
	w.WriteArrayHeader(2)
	w.WriteBytes(filled(28, 0x01))
	w.WriteBytes(filled(28, 0x02))
	w.WriteArrayHeader(1)
	w.WriteMapHeader(0)
	return w.Bytes()
}

// BlockSpec describes a Shelley family block for BuildBlock
type BlockSpec struct {
	BlockType   uint
	BlockNumber uint64
	Slot        uint64
	TxCount     int
	// Indexes of transactions that failed script validation (Alonzo and later)
	InvalidTxs []uint
	// PlutusV1Scripts are added to the witness set of the first transaction (Alonzo
	// and later). Each entry is the serialized script, a CBOR byte string wrapping
	// the flat program
	PlutusV1Scripts [][]byte
}

// BuildBlock builds a structurally valid Shelley family block. Each transaction spends
// one input, pays one output to an enterprise address, and carries one key witness.
// The first transaction has metadata
func BuildBlock(spec BlockSpec) []byte {
	babbageLayout := spec.BlockType >= BlockTypeBabbage
	setTags := spec.BlockType >= BlockTypeConway
	w := cbor.NewWriter()
	if spec.BlockType >= BlockTypeAlonzo {
		w.WriteArrayHeader(5)
	} else {
		w.WriteArrayHeader(4)
	}
	writeHeader(w, spec, babbageLayout)
	w.WriteArrayHeader(spec.TxCount)
	for i := range spec.TxCount {
		writeTxBody(w, spec, i, babbageLayout, setTags)
	}
	w.WriteArrayHeader(spec.TxCount)
	for i := range spec.TxCount {
		withScripts := i == 0 && len(spec.PlutusV1Scripts) > 0 && spec.BlockType >= BlockTypeAlonzo
		if withScripts {
			w.WriteMapHeader(2)
		} else {
			w.WriteMapHeader(1)
		}
		w.WriteUint(0)
		if setTags {
			w.WriteTag(cbor.CborTagSet)
		}
		w.WriteArrayHeader(1)
		w.WriteArrayHeader(2)
		w.WriteBytes(filled(32, byte(i)))
		w.WriteBytes(filled(64, byte(i)))
		if withScripts {
			w.WriteUint(3)
			if setTags {
				w.WriteTag(cbor.CborTagSet)
			}
			w.WriteArrayHeader(len(spec.PlutusV1Scripts))
			for _, script := range spec.PlutusV1Scripts {
				w.WriteRaw(script)
			}
		}
	}
	if spec.TxCount > 0 {
		// {0: {674: "test"}}
		w.WriteMapHeader(1)
		w.WriteUint(0)
		w.WriteMapHeader(1)
		w.WriteUint(674)
		w.WriteText("test")
	} else {
		w.WriteMapHeader(0)
	}
	if spec.BlockType >= BlockTypeAlonzo {
		w.WriteArrayHeader(len(spec.InvalidTxs))
		for _, idx := range spec.InvalidTxs {
			w.WriteUint(uint64(idx))
		}
	}
	return w.Bytes()
}

func writeHeader(w *cbor.Writer, spec BlockSpec, babbageLayout bool) {
	w.WriteArrayHeader(2)
	if babbageLayout {
		w.WriteArrayHeader(10)
	} else {
		w.WriteArrayHeader(15)
	}
	w.WriteUint(spec.BlockNumber)
	w.WriteUint(spec.Slot)
	w.WriteBytes(filled(32, 0xaa))
	w.WriteBytes(filled(32, 0x11))
	w.WriteBytes(filled(32, 0x22))
	writeVrfCert(w, 0x33)
	if !babbageLayout {
		writeVrfCert(w, 0x44)
	}
	w.WriteUint(1024)
	w.WriteBytes(filled(32, 0x55))
	if babbageLayout {
		w.WriteArrayHeader(4)
	}
	w.WriteBytes(filled(32, 0x66))
	w.WriteUint(7)
	w.WriteUint(300)
	w.WriteBytes(filled(64, 0x77))
	major := uint64(spec.BlockType)
	if babbageLayout {
		w.WriteArrayHeader(2)
		w.WriteUint(major)
		w.WriteUint(0)
	} else {
		w.WriteUint(major)
		w.WriteUint(0)
	}
	// KES signature
	w.WriteBytes(filled(448, 0x88))
}

func writeVrfCert(w *cbor.Writer, fill byte) {
	w.WriteArrayHeader(2)
	w.WriteBytes(filled(64, fill))
	w.WriteBytes(filled(80, fill))
}

func writeTxBody(w *cbor.Writer, spec BlockSpec, idx int, babbageLayout bool, setTags bool) {
	w.WriteMapHeader(4)
	w.WriteUint(0)
	if setTags {
		w.WriteTag(cbor.CborTagSet)
	}
	w.WriteArrayHeader(1)
	w.WriteArrayHeader(2)
	w.WriteBytes(filled(32, byte(0xf0+idx)))
	w.WriteUint(uint64(idx))
	w.WriteUint(1)
	w.WriteArrayHeader(1)
	// Enterprise address with a key hash payment part on mainnet
	addr := append([]byte{0x61}, filled(28, byte(idx+1))...)
	if babbageLayout {
		w.WriteMapHeader(2)
		w.WriteUint(0)
		w.WriteBytes(addr)
		w.WriteUint(1)
		w.WriteUint(2_000_000)
	} else {
		w.WriteArrayHeader(2)
		w.WriteBytes(addr)
		w.WriteUint(2_000_000)
	}
	w.WriteUint(2)
	w.WriteUint(170_000 + uint64(idx))
	w.WriteUint(3)
	w.WriteUint(spec.Slot + 3600)
}

func filled(size int, b byte) []byte {
	ret := make([]byte, size)
	for i := range ret {
		ret[i] = b
	}
	return ret
}
