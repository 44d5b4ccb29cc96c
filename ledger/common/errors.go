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
	"errors"
	"fmt"
)

var (
	ErrAddressTooShort = errors.New("address is too short")
	ErrAddressTooLong  = errors.New("address has surplus bytes")
	ErrAddressType     = errors.New("invalid address type")
	ErrChainPointer    = errors.New("invalid chain pointer")
	ErrByronChecksum   = errors.New("byron address checksum does not match")
	ErrAssetNameLength = errors.New("asset name is longer than 32 bytes")
	ErrInvalidKey      = errors.New("invalid verification key")
)

// CostModelLengthError is returned when a cost model has fewer parameters than its
// language requires
type CostModelLengthError struct {
	Language uint
	Expected int
	Found    int
}

func (e *CostModelLengthError) Error() string {
	return fmt.Sprintf(
		"cost model for language %d has %d parameters, expected at least %d",
		e.Language,
		e.Found,
		e.Expected,
	)
}

// UnsupportedEraError is returned when an operation is not available in the era of the
// decoded value
type UnsupportedEraError struct {
	Era string
	Op  string
}

func (e *UnsupportedEraError) Error() string {
	return fmt.Sprintf("%s is not supported in the %s era", e.Op, e.Era)
}
