package input

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/contribproof/internal/model"
)

// maxRecordBytes caps how much of an input record is read
const maxRecordBytes = 10 << 20

// record mirrors the input JSON; pointers distinguish absent fields from empty ones
type record struct {
	WalletAddress *string `json:"walletAddress"`
	FileHash      *string `json:"fileHash"`
}

// ParseFile reads the record at path and extracts its ownership claim
func ParseFile(path string) (model.OwnershipClaim, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.OwnershipClaim{}, &model.MalformedInputError{Path: path, Reason: "cannot stat record", Err: err}
	}
	if info.Size() > maxRecordBytes {
		return model.OwnershipClaim{}, &model.MalformedInputError{Path: path, Reason: "record exceeds 10 MiB"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.OwnershipClaim{}, &model.MalformedInputError{Path: path, Reason: "cannot read record", Err: err}
	}

	claim, err := Parse(data)
	if err != nil {
		var mie *model.MalformedInputError
		if errors.As(err, &mie) {
			mie.Path = path
		}
		return model.OwnershipClaim{}, err
	}
	return claim, nil
}

// Parse decodes a JSON object and extracts the claim. Both fields must be present,
// be strings, and be non-blank. Values are returned verbatim.
func Parse(data []byte) (model.OwnershipClaim, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return model.OwnershipClaim{}, &model.MalformedInputError{Reason: "record is not a JSON object"}
	}
	// json.Unmarshal would substitute U+FFFD and alter the claim
	if !utf8.Valid(trimmed) {
		return model.OwnershipClaim{}, &model.MalformedInputError{Reason: "record is not valid UTF-8"}
	}

	var rec record
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return model.OwnershipClaim{}, &model.MalformedInputError{Reason: "field " + typeErr.Field + " must be a string", Err: err}
		}
		return model.OwnershipClaim{}, &model.MalformedInputError{Reason: "invalid JSON", Err: err}
	}

	if err := requireField("walletAddress", rec.WalletAddress); err != nil {
		return model.OwnershipClaim{}, err
	}
	if err := requireField("fileHash", rec.FileHash); err != nil {
		return model.OwnershipClaim{}, err
	}

	return model.OwnershipClaim{
		WalletAddress: *rec.WalletAddress,
		FileHash:      *rec.FileHash,
	}, nil
}

func requireField(name string, value *string) error {
	if value == nil {
		return &model.MalformedInputError{Reason: "missing required field " + name}
	}
	if strings.TrimSpace(*value) == "" {
		return &model.MalformedInputError{Reason: "empty required field " + name}
	}
	return nil
}
