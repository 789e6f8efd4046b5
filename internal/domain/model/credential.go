package model

import "time"

// CredentialKeyAdminToken is the durable storage key holding the admin
// bearer token.
const CredentialKeyAdminToken = "aToken"

// Credential is a single durable key-value slot. Value is plaintext at the
// domain boundary; adapters may encrypt it at rest.
type Credential struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
