package model

// Verdict is the oracle's answer for one OwnershipClaim.
// Only Confirmed carries meaning downstream; the rest is diagnostic.
type Verdict struct {
	Confirmed  bool
	StatusCode int
	Attempts   int
	Endpoint   string
}
