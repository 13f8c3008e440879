package models

import (
	"strconv"
	"strings"
)

type SessionRefKind int

const (
	SessionRefOpaque SessionRefKind = iota
	SessionRefLegacy
)

// SessionRef identifies a session either by its opaque token or by the
// legacy "<user>_<deckId>_<timestamp>" form older clients still send.
type SessionRef struct {
	Kind      SessionRefKind
	Token     string
	User      string
	DeckID    uint
	Timestamp int64
}

func OpaqueSessionRef(token string) SessionRef {
	return SessionRef{Kind: SessionRefOpaque, Token: token}
}

func (r SessionRef) IsLegacy() bool {
	return r.Kind == SessionRefLegacy
}

// ParseLegacySessionID parses "<user>_<deckId>_<timestamp>". Only the deck
// segment decides the shape; a missing or non-numeric timestamp is kept as 0.
// The second return value is false when the deck segment is not an integer.
func ParseLegacySessionID(id string) (SessionRef, bool) {
	parts := strings.Split(id, "_")
	if len(parts) < 2 {
		return SessionRef{}, false
	}

	deckID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return SessionRef{}, false
	}

	var timestamp int64
	if len(parts) > 2 {
		timestamp, _ = strconv.ParseInt(parts[2], 10, 64)
	}

	return SessionRef{
		Kind:      SessionRefLegacy,
		Token:     id,
		User:      parts[0],
		DeckID:    uint(deckID),
		Timestamp: timestamp,
	}, true
}
