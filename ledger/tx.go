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
	"errors"
	"fmt"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/ledger/allegra"
	"github.com/carloskiki/pallas-extras-sub001/ledger/alonzo"
	"github.com/carloskiki/pallas-extras-sub001/ledger/babbage"
	"github.com/carloskiki/pallas-extras-sub001/ledger/byron"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/carloskiki/pallas-extras-sub001/ledger/conway"
	"github.com/carloskiki/pallas-extras-sub001/ledger/mary"
	"github.com/carloskiki/pallas-extras-sub001/ledger/shelley"
)

const (
	TxTypeByron   = byron.TxTypeByron
	TxTypeShelley = shelley.TxTypeShelley
	TxTypeAllegra = allegra.TxTypeAllegra
	TxTypeMary    = mary.TxTypeMary
	TxTypeAlonzo  = alonzo.TxTypeAlonzo
	TxTypeBabbage = babbage.TxTypeBabbage
	TxTypeConway  = conway.TxTypeConway
)

type (
	Transaction       = common.Transaction
	TransactionBody   = common.TransactionBody
	TransactionInput  = common.TransactionInput
	TransactionOutput = common.TransactionOutput
	Utxo              = common.Utxo
)

var ErrUnknownTxType = errors.New("unknown transaction type")

func txOrNil(tx Transaction, err error) (Transaction, error) {
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func txBodyOrNil(body TransactionBody, err error) (TransactionBody, error) {
	if err != nil {
		return nil, err
	}
	return body, nil
}

func NewTransactionFromCbor(txType uint, data []byte) (Transaction, error) {
	switch txType {
	case TxTypeByron:
		return txOrNil(byron.NewByronTransactionFromCbor(data))
	case TxTypeShelley:
		return txOrNil(shelley.NewShelleyTransactionFromCbor(data))
	case TxTypeAllegra:
		return txOrNil(allegra.NewAllegraTransactionFromCbor(data))
	case TxTypeMary:
		return txOrNil(mary.NewMaryTransactionFromCbor(data))
	case TxTypeAlonzo:
		return txOrNil(alonzo.NewAlonzoTransactionFromCbor(data))
	case TxTypeBabbage:
		return txOrNil(babbage.NewBabbageTransactionFromCbor(data))
	case TxTypeConway:
		return txOrNil(conway.NewConwayTransactionFromCbor(data))
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownTxType, txType)
}

func NewTransactionBodyFromCbor(txType uint, data []byte) (TransactionBody, error) {
	switch txType {
	case TxTypeByron:
		return nil, errors.New("no body for Byron transactions")
	case TxTypeShelley:
		return txBodyOrNil(shelley.NewShelleyTransactionBodyFromCbor(data))
	case TxTypeAllegra:
		return txBodyOrNil(allegra.NewAllegraTransactionBodyFromCbor(data))
	case TxTypeMary:
		return txBodyOrNil(mary.NewMaryTransactionBodyFromCbor(data))
	case TxTypeAlonzo:
		return txBodyOrNil(alonzo.NewAlonzoTransactionBodyFromCbor(data))
	case TxTypeBabbage:
		return txBodyOrNil(babbage.NewBabbageTransactionBodyFromCbor(data))
	case TxTypeConway:
		return txBodyOrNil(conway.NewConwayTransactionBodyFromCbor(data))
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownTxType, txType)
}

// NewTransactionOutputFromCbor decodes an output of any era. Array outputs use the
// pre-Babbage layout and map outputs the Babbage layout
func NewTransactionOutputFromCbor(data []byte) (TransactionOutput, error) {
	out, err := babbage.NewBabbageTransactionOutputFromCbor(data)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DetermineTransactionType finds the era of a transaction by its shape. Later eras are
// tried first where layouts overlap
func DetermineTransactionType(data []byte) (uint, error) {
	rd := cbor.NewReader(data)
	n, err := rd.ReadArrayLen()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnknownTxType, err)
	}
	switch n {
	case 2:
		if _, err := byron.NewByronTransactionFromCbor(data); err == nil {
			return TxTypeByron, nil
		}
	case 3:
		// A Byron transaction without its witnesses
		var tx byron.ByronTx
		if err := tx.UnmarshalCBOR(data); err == nil {
			return TxTypeByron, nil
		}
		if _, err := mary.NewMaryTransactionFromCbor(data); err == nil {
			return detectShelleyFamily(data), nil
		}
	case 4, -1:
		if _, err := conway.NewConwayTransactionFromCbor(data); err == nil {
			return TxTypeConway, nil
		}
		if _, err := babbage.NewBabbageTransactionFromCbor(data); err == nil {
			return TxTypeBabbage, nil
		}
		if _, err := alonzo.NewAlonzoTransactionFromCbor(data); err == nil {
			return TxTypeAlonzo, nil
		}
	}
	return 0, ErrUnknownTxType
}

// detectShelleyFamily narrows a three element transaction down by the body keys it uses
func detectShelleyFamily(data []byte) uint {
	if _, err := shelley.NewShelleyTransactionFromCbor(data); err == nil {
		return TxTypeShelley
	}
	if _, err := allegra.NewAllegraTransactionFromCbor(data); err == nil {
		return TxTypeAllegra
	}
	return TxTypeMary
}
