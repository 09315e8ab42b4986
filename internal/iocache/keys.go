package iocache

import (
	"net/url"
	"strconv"
	"strings"
)

// KeyNamespace prefixes every page cache key.
const KeyNamespace = "my-list:"

// CacheKey builds the page cache key for a user, page and size.
// The user id is query-escaped so it never contains ':' or glob metacharacters,
// which keeps one user's prefix from matching another user's keys.
func CacheKey(userID string, page, size int) string {
	return UserKeyPrefix(userID) + strconv.Itoa(page) + ":" + strconv.Itoa(size)
}

// UserKeyPrefix is the prefix shared by every cached page of a user.
func UserKeyPrefix(userID string) string {
	return KeyNamespace + url.QueryEscape(userID) + ":"
}

// KeyPrefix returns the user prefix of a key built by CacheKey, or "" if the key is malformed.
func KeyPrefix(key string) string {
	if !strings.HasPrefix(key, KeyNamespace) {
		return ""
	}
	rest := key[len(KeyNamespace):]
	// rest is {escapedUser}:{page}:{size}
	last := strings.LastIndexByte(rest, ':')
	if last <= 0 {
		return ""
	}
	mid := strings.LastIndexByte(rest[:last], ':')
	if mid <= 0 {
		return ""
	}
	return KeyNamespace + rest[:mid+1]
}
