// Package snapshot encodes the library aggregate as the opaque blob every store persists.
package snapshot

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

const currentVersion = 1

var (
	// ErrInvalidPayload is returned when stored bytes are not valid JSON.
	ErrInvalidPayload = errors.New("snapshot payload is not valid json")

	// ErrUnsupportedVersion is returned for payloads written by an unknown format version.
	ErrUnsupportedVersion = errors.New("snapshot version is not supported")
)

// sorted map keys keep identical aggregates byte-identical on disk
var codec = jsoniter.ConfigCompatibleWithStandardLibrary

type envelope struct {
	Version int                    `json:"version"`
	System  library.SystemSnapshot `json:"system"`
}

// Encode serializes a snapshot with a format version header.
func Encode(system library.SystemSnapshot) ([]byte, error) {
	data, err := codec.Marshal(envelope{Version: currentVersion, System: system})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses bytes produced by Encode.
func Decode(data []byte) (library.SystemSnapshot, error) {
	if !codec.Valid(data) {
		return library.SystemSnapshot{}, ErrInvalidPayload
	}
	var decoded envelope
	if err := codec.Unmarshal(data, &decoded); err != nil {
		return library.SystemSnapshot{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if decoded.Version != currentVersion {
		return library.SystemSnapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, decoded.Version)
	}
	return decoded.System, nil
}
