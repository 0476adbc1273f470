package models

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID is returned for an empty post identifier.
var ErrInvalidID = errors.New("invalid post id")

// IDKind tells which addressing scheme a PostID uses.
type IDKind int

const (
	// OpaqueID is a service-assigned string such as a millisecond timestamp.
	OpaqueID IDKind = iota
	// NativeID is a document-store ObjectID.
	NativeID
)

func (k IDKind) String() string {
	if k == NativeID {
		return "native"
	}
	return "opaque"
}

// PostID is a post identifier as supplied by a client. Both schemes are
// accepted everywhere an id is.
type PostID struct {
	Kind   IDKind
	Native primitive.ObjectID
	Opaque string
}

// ParseID classifies raw as a native ObjectID when it is 24 hex digits,
// otherwise as an opaque string.
func ParseID(raw string) (PostID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PostID{}, ErrInvalidID
	}
	if primitive.IsValidObjectID(raw) {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err == nil {
			return PostID{Kind: NativeID, Native: oid}, nil
		}
	}
	return PostID{Kind: OpaqueID, Opaque: raw}, nil
}

// NewNativeID generates a fresh ObjectID-based identifier.
func NewNativeID() PostID {
	return PostID{Kind: NativeID, Native: primitive.NewObjectID()}
}

// String is the canonical text form, the one stores key posts by.
func (id PostID) String() string {
	if id.Kind == NativeID {
		return id.Native.Hex()
	}
	return id.Opaque
}

// IsNative reports whether the id uses the ObjectID scheme.
func (id PostID) IsNative() bool {
	return id.Kind == NativeID
}
