package domain

// DecryptStatus tags the outcome of a decrypt call.
type DecryptStatus int

const (
	// StatusDecrypted means the input was an envelope and decrypted successfully.
	StatusDecrypted DecryptStatus = iota
	// StatusPassthrough means the input was not an envelope and is returned unchanged.
	StatusPassthrough
	// StatusFailed means the input was an envelope that could not be decrypted.
	StatusFailed
)

// String returns the status name used in logs and API responses.
func (s DecryptStatus) String() string {
	switch s {
	case StatusDecrypted:
		return "decrypted"
	case StatusPassthrough:
		return "passthrough"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DecryptResult is the outcome of decrypting one field.
//
// A failed result is distinguishable from a legitimately empty value: Value is nil and
// Status is StatusFailed, and Display returns the placeholder for rendering.
type DecryptResult struct {
	Value  any
	Status DecryptStatus
	// Reason is the internal cause of a failure. It is never exposed to clients.
	Reason error
}

// Failed reports whether decryption was attempted and failed.
func (r DecryptResult) Failed() bool {
	return r.Status == StatusFailed
}

// Display returns the value to render: the plaintext, the legacy passthrough value,
// or DecryptionFailedPlaceholder.
func (r DecryptResult) Display() any {
	if r.Failed() {
		return DecryptionFailedPlaceholder
	}
	return r.Value
}

// Decrypted builds a successful result.
func Decrypted(value any) DecryptResult {
	return DecryptResult{Value: value, Status: StatusDecrypted}
}

// Passthrough builds a result for non-envelope input.
func Passthrough(value any) DecryptResult {
	return DecryptResult{Value: value, Status: StatusPassthrough}
}

// Failure builds a failed result.
func Failure(reason error) DecryptResult {
	return DecryptResult{Status: StatusFailed, Reason: reason}
}
