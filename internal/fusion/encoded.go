// Package fusion merges per-frame DOM and accessibility snapshots into one
// addressable tree. Every element node gets an encoded identifier combining
// the frame's discovery ordinal with the node's backend identity, which makes
// it unique across the whole page even though backend identities repeat
// between frames.
package fusion

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// EncodedID is "{frameOrdinal}-{backendNodeId}". The canonical external
// reference to a resolved node.
type EncodedID string

var encodedIDPattern = regexp.MustCompile(`^\d+-\d+$`)

// MalformedEncodedIDError reports an externally supplied identifier that does
// not match the two-integer form.
type MalformedEncodedIDError struct {
	Input string
}

func (e *MalformedEncodedIDError) Error() string {
	return fmt.Sprintf("malformed encoded id %q, want {frameOrdinal}-{backendNodeId}", e.Input)
}

// Encode builds the identifier for a backend node in a frame.
func Encode(ordinal int, backendID int64) EncodedID {
	return EncodedID(strconv.Itoa(ordinal) + "-" + strconv.FormatInt(backendID, 10))
}

// ParseEncodedID splits an identifier into its frame ordinal and backend node
// identity, rejecting anything outside the canonical form.
func ParseEncodedID(s string) (ordinal int, backendID int64, err error) {
	if !encodedIDPattern.MatchString(s) {
		return 0, 0, &MalformedEncodedIDError{Input: s}
	}
	sep := strings.IndexByte(s, '-')
	ordinal, err = strconv.Atoi(s[:sep])
	if err != nil {
		return 0, 0, &MalformedEncodedIDError{Input: s}
	}
	backendID, err = strconv.ParseInt(s[sep+1:], 10, 64)
	if err != nil {
		return 0, 0, &MalformedEncodedIDError{Input: s}
	}
	return ordinal, backendID, nil
}
