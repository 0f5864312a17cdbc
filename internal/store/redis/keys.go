package redis

const (
	// KeyPrefixCredential is the prefix for stored session credentials
	KeyPrefixCredential = "kelas:credential:"
	// KeyAllSessions is the key for the set of all session keys
	KeyAllSessions = "kelas:sessions:all"
)

// CredentialKey returns the Redis key for a session credential
func CredentialKey(sessionKey string) string {
	return KeyPrefixCredential + sessionKey
}

// AllSessionsKey returns the key for the set of all session keys
func AllSessionsKey() string {
	return KeyAllSessions
}
