package ledger

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// Length of a contract strkey: version byte, 32 byte payload and checksum in base32
const contractStrkeyLen = 56

// ParseContractID accepts a contract strkey (C...) or the 64 char hex form of the contract id
func ParseContractID(ref string) (xdr.ContractId, error) {
	var id xdr.ContractId

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return id, fmt.Errorf("empty contract id")
	}

	var raw []byte
	var err error
	if len(ref) == contractStrkeyLen && ref[0] == 'C' {
		raw, err = strkey.Decode(strkey.VersionByteContract, ref)
	} else {
		raw, err = hex.DecodeString(ref)
	}
	if err != nil {
		return id, fmt.Errorf("invalid contract id %q: %w", ref, err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("invalid contract id %q: expected %d bytes, got %d", ref, len(id), len(raw))
	}

	copy(id[:], raw)
	return id, nil
}

// EncodeContractID returns the canonical strkey form of a contract id
func EncodeContractID(id xdr.ContractId) (string, error) {
	return strkey.Encode(strkey.VersionByteContract, id[:])
}

// ContractInstanceKey addresses the persistent instance entry of a contract
func ContractInstanceKey(id xdr.ContractId) xdr.LedgerKey {
	return xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.LedgerKeyContractData{
			Contract: xdr.ScAddress{
				Type:       xdr.ScAddressTypeScAddressTypeContract,
				ContractId: &id,
			},
			Key:        xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance},
			Durability: xdr.ContractDataDurabilityPersistent,
		},
	}
}

// ContractCodeKey addresses the code entry of a WASM blob; code is keyed by hash, not by contract
func ContractCodeKey(hash xdr.Hash) xdr.LedgerKey {
	return xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeContractCode,
		ContractCode: &xdr.LedgerKeyContractCode{
			Hash: hash,
		},
	}
}
