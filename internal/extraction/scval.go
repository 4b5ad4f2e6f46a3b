package extraction

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"

	"contractloader/internal/models"

	"github.com/stellar/go/xdr"
)

// RenderStorage turns contract instance storage into display entries sorted by key.
// A nil map renders as an empty slice.
func RenderStorage(storage *xdr.ScMap) []models.StorageEntry {
	if storage == nil {
		return []models.StorageEntry{}
	}

	entries := make([]models.StorageEntry, 0, len(*storage))
	for _, item := range *storage {
		rawKey, _ := item.Key.MarshalBinary()
		rawVal, _ := item.Val.MarshalBinary()

		entries = append(entries, models.StorageEntry{
			Key:       ScValToString(item.Key),
			KeyType:   item.Key.Type.String(),
			Value:     ScValToInterface(item.Val),
			ValueType: item.Val.Type.String(),
			RawKey:    rawKey,
			RawValue:  rawVal,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	return entries
}

// ScValToString renders an ScVal as a compact string, used for map keys
func ScValToString(val xdr.ScVal) string {
	switch val.Type {
	case xdr.ScValTypeScvBool:
		if val.MustB() {
			return "true"
		}
		return "false"
	case xdr.ScValTypeScvVoid:
		return "void"
	case xdr.ScValTypeScvU32:
		return fmt.Sprintf("%d", val.MustU32())
	case xdr.ScValTypeScvI32:
		return fmt.Sprintf("%d", val.MustI32())
	case xdr.ScValTypeScvU64:
		return fmt.Sprintf("%d", val.MustU64())
	case xdr.ScValTypeScvI64:
		return fmt.Sprintf("%d", val.MustI64())
	case xdr.ScValTypeScvU128, xdr.ScValTypeScvI128, xdr.ScValTypeScvU256, xdr.ScValTypeScvI256:
		return bigIntOf(val).String()
	case xdr.ScValTypeScvSymbol:
		return string(val.MustSym())
	case xdr.ScValTypeScvString:
		return string(val.MustStr())
	case xdr.ScValTypeScvAddress:
		str, err := val.MustAddress().String()
		if err != nil {
			return "<invalid address>"
		}
		return str
	case xdr.ScValTypeScvBytes:
		return hex.EncodeToString(val.MustBytes())
	case xdr.ScValTypeScvVec:
		// Enum-like keys such as DataKey::Balance(addr) are vecs led by a symbol
		vec := val.MustVec()
		if vec == nil {
			return "[]"
		}
		out := "["
		for i, element := range *vec {
			if i > 0 {
				out += ", "
			}
			out += ScValToString(element)
		}
		return out + "]"
	default:
		return fmt.Sprintf("<%s>", val.Type.String())
	}
}

// ScValToInterface converts an ScVal into plain Go values for JSON output.
// Integers wider than 64 bits become decimal strings.
func ScValToInterface(val xdr.ScVal) interface{} {
	switch val.Type {
	case xdr.ScValTypeScvBool:
		return val.MustB()
	case xdr.ScValTypeScvVoid:
		return nil
	case xdr.ScValTypeScvU32:
		return uint32(val.MustU32())
	case xdr.ScValTypeScvI32:
		return int32(val.MustI32())
	case xdr.ScValTypeScvU64:
		return uint64(val.MustU64())
	case xdr.ScValTypeScvI64:
		return int64(val.MustI64())
	case xdr.ScValTypeScvTimepoint:
		return uint64(val.MustTimepoint())
	case xdr.ScValTypeScvDuration:
		return uint64(val.MustDuration())
	case xdr.ScValTypeScvU128, xdr.ScValTypeScvI128, xdr.ScValTypeScvU256, xdr.ScValTypeScvI256:
		return bigIntOf(val).String()
	case xdr.ScValTypeScvSymbol, xdr.ScValTypeScvString, xdr.ScValTypeScvAddress, xdr.ScValTypeScvBytes:
		return ScValToString(val)
	case xdr.ScValTypeScvVec:
		vec := val.MustVec()
		if vec == nil {
			return []interface{}{}
		}
		result := make([]interface{}, len(*vec))
		for i, element := range *vec {
			result[i] = ScValToInterface(element)
		}
		return result
	case xdr.ScValTypeScvMap:
		scMap := val.MustMap()
		result := make(map[string]interface{})
		if scMap == nil {
			return result
		}
		for _, entry := range *scMap {
			result[ScValToString(entry.Key)] = ScValToInterface(entry.Val)
		}
		return result
	default:
		return val.Type.String()
	}
}

// bigIntOf assembles 128 and 256 bit integer parts, most significant first
func bigIntOf(val xdr.ScVal) *big.Int {
	var signedHi int64
	var parts []uint64

	switch val.Type {
	case xdr.ScValTypeScvU128:
		p := val.MustU128()
		parts = []uint64{uint64(p.Hi), uint64(p.Lo)}
	case xdr.ScValTypeScvI128:
		p := val.MustI128()
		signedHi = int64(p.Hi)
		parts = []uint64{uint64(p.Hi), uint64(p.Lo)}
	case xdr.ScValTypeScvU256:
		p := val.MustU256()
		parts = []uint64{uint64(p.HiHi), uint64(p.HiLo), uint64(p.LoHi), uint64(p.LoLo)}
	case xdr.ScValTypeScvI256:
		p := val.MustI256()
		signedHi = int64(p.HiHi)
		parts = []uint64{uint64(p.HiHi), uint64(p.HiLo), uint64(p.LoHi), uint64(p.LoLo)}
	default:
		return new(big.Int)
	}

	result := new(big.Int)
	for _, part := range parts {
		result.Lsh(result, 64)
		result.Or(result, new(big.Int).SetUint64(part))
	}

	// Two's complement for negative signed values
	if signedHi < 0 {
		result.Sub(result, new(big.Int).Lsh(big.NewInt(1), uint(64*len(parts))))
	}

	return result
}
