// Package cache holds short-lived in-process caches for hot lookups.
package cache

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Membership caches roomID/userID membership checks on the message send
// path. Entries are short-lived and invalidated on leave/remove, so a
// stale positive can outlive an eviction by at most the TTL.
var Membership = gocache.New(time.Minute*5, time.Second*30)

func membershipKey(roomID, userID string) string {
	return fmt.Sprintf("%s:%s", roomID, userID)
}

// IsMember returns the cached membership verdict, if present.
func IsMember(roomID, userID string) (bool, bool) {
	v, ok := Membership.Get(membershipKey(roomID, userID))
	if !ok {
		return false, false
	}
	return v.(bool), true
}

// SetMember records a membership verdict.
func SetMember(roomID, userID string, isMember bool) {
	Membership.SetDefault(membershipKey(roomID, userID), isMember)
}

// DropMember forgets a user's cached verdict for a room.
func DropMember(roomID, userID string) {
	Membership.Delete(membershipKey(roomID, userID))
}
