package domain

// Redis key layout:
//
//	session:{token}              -> sessionId
//	sessionData:{sessionId}      -> SessionData JSON
//	user:{username}:sessions     -> set of sessionId
//	sessionRegenerated:{oldId}   -> newSessionId (tombstone)
const (
	tokenPrefix     = "session:"
	dataPrefix      = "sessionData:"
	userPrefix      = "user:"
	userSuffix      = ":sessions"
	tombstonePrefix = "sessionRegenerated:"
)

// KeyFamilies are the SCAN patterns that together cover every session key.
var KeyFamilies = []string{
	tokenPrefix + "*",
	dataPrefix + "*",
	userPrefix + "*" + userSuffix,
	tombstonePrefix + "*",
}

// TokenKey returns the key mapping a token to its session id.
func TokenKey(token string) string {
	return tokenPrefix + token
}

// DataKey returns the key holding a session's data.
func DataKey(sessionID string) string {
	return dataPrefix + sessionID
}

// UserSessionsKey returns the key of a user's session id set.
func UserSessionsKey(username string) string {
	return userPrefix + username + userSuffix
}

// TombstoneKey returns the key marking a regenerated session.
func TombstoneKey(oldSessionID string) string {
	return tombstonePrefix + oldSessionID
}
