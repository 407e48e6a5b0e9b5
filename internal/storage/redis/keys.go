package redis

// Key prefix for all tracing data
const keyPrefix = "bluetrace"

// credentialsKey returns the Redis key for the username -> password hash
func credentialsKey() string {
	return keyPrefix + ":credentials"
}

// tempIDJournalKey returns the Redis key for the temp-ID journal list.
// A list keeps records in push order, which is issuance order.
func tempIDJournalKey() string {
	return keyPrefix + ":tempids"
}
