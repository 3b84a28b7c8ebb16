package input

import (
	"path/filepath"
	"testing"

	"github.com/ppiankov/contribproof/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Valid(t *testing.T) {
	claim, err := Parse([]byte(`{"walletAddress": "0xABC", "fileHash": "deadbeef", "extra": [1, 2]}`))
	require.NoError(t, err)
	assert.Equal(t, model.OwnershipClaim{WalletAddress: "0xABC", FileHash: "deadbeef"}, claim)
}

func TestParse_PreservesValuesVerbatim(t *testing.T) {
	claim, err := Parse([]byte(`{"walletAddress": " 0xAbC ", "fileHash": "DEADbeef"}`))
	require.NoError(t, err)
	assert.Equal(t, " 0xAbC ", claim.WalletAddress)
	assert.Equal(t, "DEADbeef", claim.FileHash)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{"empty", ``, "not a JSON object"},
		{"array", `[{"walletAddress": "0xABC", "fileHash": "deadbeef"}]`, "not a JSON object"},
		{"truncated", `{"walletAddress": "0xABC"`, "invalid JSON"},
		{"missing fileHash", `{"walletAddress": "0xABC"}`, "missing required field fileHash"},
		{"missing walletAddress", `{"fileHash": "deadbeef"}`, "missing required field walletAddress"},
		{"null fileHash", `{"walletAddress": "0xABC", "fileHash": null}`, "missing required field fileHash"},
		{"blank walletAddress", `{"walletAddress": "  ", "fileHash": "deadbeef"}`, "empty required field walletAddress"},
		{"numeric fileHash", `{"walletAddress": "0xABC", "fileHash": 12}`, "field fileHash must be a string"},
		{"invalid UTF-8 walletAddress", "{\"walletAddress\": \"0x\xffAB\", \"fileHash\": \"deadbeef\"}", "not valid UTF-8"},
		{"invalid UTF-8 fileHash", "{\"walletAddress\": \"0xABC\", \"fileHash\": \"de\xfe\"}", "not valid UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))

			var mie *model.MalformedInputError
			require.ErrorAs(t, err, &mie)
			assert.Contains(t, mie.Reason, tt.reason)
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "vana_record.json", `{"walletAddress": "0xABC", "fileHash": "deadbeef"}`)

	claim, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0xABC", claim.WalletAddress)
	assert.Equal(t, "deadbeef", claim.FileHash)
}

func TestParseFile_SetsPathOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "vana_record.json", `{"walletAddress": "0xABC"}`)

	_, err := ParseFile(path)

	var mie *model.MalformedInputError
	require.ErrorAs(t, err, &mie)
	assert.Equal(t, path, mie.Path)
	assert.Contains(t, err.Error(), path)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "vana_gone.json"))

	var mie *model.MalformedInputError
	assert.ErrorAs(t, err, &mie)
}
