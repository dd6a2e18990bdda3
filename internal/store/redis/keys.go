package redis

const (
	// KeyPrefixVerdict is the prefix for per-account verdict keys
	KeyPrefixVerdict = "promreg:verdict:"
	// KeyAllAccounts is the key for the set of account names with verdicts
	KeyAllAccounts = "promreg:accounts:all"
)

// VerdictKey returns the Redis key for an account's latest verdict
func VerdictKey(name string) string {
	return KeyPrefixVerdict + name
}

// AllAccountsKey returns the key for the set of tracked account names
func AllAccountsKey() string {
	return KeyAllAccounts
}
