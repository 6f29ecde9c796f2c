// Package nav implements the compact action:key:value token protocol that
// round-trips user intent through inline keyboard callback data.
package nav

import (
	"fmt"
	"strconv"
	"strings"
)

// Sep separates the three top-level token fields. Actions and keys are closed
// vocabularies guaranteed not to contain it; values must not contain it at
// their top level either.
const Sep = ":"

// valueSep separates compound payloads inside the value field. It is applied
// only within that field, from the right, so market prefixes stay opaque.
const valueSep = "_"

// Action is the top-level verb of a navigation token.
type Action string

const (
	// ActionAccess resolves a pending access request (admin-side controls).
	ActionAccess Action = "access"
	// ActionStore navigates the per-market catalog.
	ActionStore Action = "get_store"
	// ActionDetails requests a full product rendering for a search result.
	ActionDetails Action = "details"
)

// Key is the action-scoped operation of a navigation token.
type Key string

const (
	KeyAllow Key = "allow"
	KeyDeny  Key = "deny"
	KeyBlock Key = "block"

	KeyBrowse Key = "browse"
	KeyList   Key = "list"
	KeySend   Key = "send"
	KeyDelete Key = "delete"
	KeyAdd    Key = "add"

	KeyURL Key = "url"
)

// Token is the parsed form of a navigation callback payload.
type Token struct {
	Action Action
	Key    Key
	Value  string
}

// ParseError reports a structurally malformed token. It is recoverable by
// design: the dispatcher answers the tap with a generic acknowledgment and
// logs the raw payload admin-side.
type ParseError struct {
	Raw   string
	Parts int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("nav: malformed token %q: want 3 parts, got %d", e.Raw, e.Parts)
}

// New builds a token from its parts.
func New(action Action, key Key, value string) Token {
	return Token{Action: action, Key: key, Value: value}
}

// Encode serializes the token into its wire form.
func (t Token) Encode() string {
	return string(t.Action) + Sep + string(t.Key) + Sep + t.Value
}

// Parse splits raw callback data into a token. The shape must be exactly
// three separator-delimited parts with a non-empty action and key; anything
// else is a *ParseError. Vocabulary checks are left to the dispatch table so
// an unknown action degrades to an inert response instead of an error.
func Parse(raw string) (Token, error) {
	parts := strings.Split(raw, Sep)
	if len(parts) != 3 {
		return Token{}, &ParseError{Raw: raw, Parts: len(parts)}
	}
	if parts[0] == "" || parts[1] == "" {
		return Token{}, &ParseError{Raw: raw, Parts: len(parts)}
	}
	return Token{Action: Action(parts[0]), Key: Key(parts[1]), Value: parts[2]}, nil
}

// JoinMarketIndex encodes a (market, row index) pair into a compound value.
func JoinMarketIndex(market string, index int) string {
	return market + valueSep + strconv.Itoa(index)
}

// SplitMarketIndex decodes a compound value produced by JoinMarketIndex.
// The split runs from the right so markets containing the inner separator
// still round-trip.
func SplitMarketIndex(value string) (string, int, error) {
	cut := strings.LastIndex(value, valueSep)
	if cut <= 0 || cut == len(value)-1 {
		return "", 0, fmt.Errorf("nav: compound value %q: missing %q separator", value, valueSep)
	}
	index, err := strconv.Atoi(value[cut+1:])
	if err != nil {
		return "", 0, fmt.Errorf("nav: compound value %q: bad index: %w", value, err)
	}
	return value[:cut], index, nil
}

// Index decodes the value as a bare integer (the send key payload).
func (t Token) Index() (int, error) {
	return strconv.Atoi(t.Value)
}
