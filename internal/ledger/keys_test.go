package ledger_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"contractloader/internal/ledger"
	"contractloader/internal/ledger/ledgertest"

	protocol "github.com/stellar/go/protocols/rpc"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContractID(t *testing.T) {
	id := ledgertest.ContractID(0x42)
	encoded, err := ledger.EncodeContractID(id)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "C"))

	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{"strkey", encoded, false},
		{"strkey with spaces", "  " + encoded + "\n", false},
		{"hex", hex.EncodeToString(id[:]), false},
		{"empty", "", true},
		{"short hex", "abcd", true},
		{"garbage", "not-a-contract", true},
		{"bad checksum", encoded[:55] + flipLast(encoded), true},
		{"account strkey", "GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ledger.ParseContractID(tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, id, got)
		})
	}
}

func TestContractInstanceKey(t *testing.T) {
	id := ledgertest.ContractID(0x07)
	key := ledger.ContractInstanceKey(id)

	assert.Equal(t, xdr.LedgerEntryTypeContractData, key.Type)
	require.NotNil(t, key.ContractData)
	assert.Equal(t, xdr.ContractDataDurabilityPersistent, key.ContractData.Durability)
	assert.Equal(t, xdr.ScValTypeScvLedgerKeyContractInstance, key.ContractData.Key.Type)
	require.NotNil(t, key.ContractData.Contract.ContractId)
	assert.Equal(t, id, *key.ContractData.Contract.ContractId)
}

func TestContractCodeKey(t *testing.T) {
	hash := ledgertest.Hash(0x08)
	key := ledger.ContractCodeKey(hash)

	assert.Equal(t, xdr.LedgerEntryTypeContractCode, key.Type)
	require.NotNil(t, key.ContractCode)
	assert.Equal(t, hash, key.ContractCode.Hash)
}

func TestHexRoundTrip(t *testing.T) {
	hash := ledgertest.Hash(0x9f)
	code := []byte{0x00, 0x61, 0x73, 0x6d, 0xff, 0x10}

	decodedHash, err := hex.DecodeString(hex.EncodeToString(hash[:]))
	require.NoError(t, err)
	assert.Equal(t, hash[:], decodedHash)

	decodedCode, err := hex.DecodeString(hex.EncodeToString(code))
	require.NoError(t, err)
	assert.Equal(t, code, decodedCode)
}

func flipLast(s string) string {
	if s[len(s)-1] == 'A' {
		return "B"
	}
	return "A"
}

func requestFor(t *testing.T, key xdr.LedgerKey) protocol.GetLedgerEntriesRequest {
	t.Helper()
	keyB64, err := xdr.MarshalBase64(key)
	require.NoError(t, err)
	return protocol.GetLedgerEntriesRequest{Keys: []string{keyB64}}
}
