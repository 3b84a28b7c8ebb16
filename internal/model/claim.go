package model

// OwnershipClaim is the wallet/content pair asserted by a single input record.
// Values are carried verbatim from the record; hex hashes are not case-folded.
type OwnershipClaim struct {
	WalletAddress string `json:"walletAddress"` // Contributor wallet identity
	FileHash      string `json:"fileHash"`      // Fingerprint of the contributed content
}
