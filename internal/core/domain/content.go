package domain

import (
	"fmt"
	"strings"
)

// ContentType is the kind of content a seller can boost.
type ContentType int

const (
	ContentTypeUnknown ContentType = iota
	ContentTypeLiveStream
	ContentTypePost
	ContentTypeProfile
)

// ContentTypes lists every boostable kind in their canonical order.
var ContentTypes = []ContentType{ContentTypeLiveStream, ContentTypePost, ContentTypeProfile}

func (t ContentType) String() string {
	switch t {
	case ContentTypeLiveStream:
		return "live_stream"
	case ContentTypePost:
		return "post"
	case ContentTypeProfile:
		return "profile"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the boostable kinds.
func (t ContentType) Valid() bool {
	return t >= ContentTypeLiveStream && t <= ContentTypeProfile
}

// ParseContentType converts the wire name into a ContentType. Unknown names
// fail with ErrInvalidContentType.
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "live_stream", "livestream", "live":
		return ContentTypeLiveStream, nil
	case "post":
		return ContentTypePost, nil
	case "profile":
		return ContentTypeProfile, nil
	default:
		return ContentTypeUnknown, fmt.Errorf("%w: %q", ErrInvalidContentType, s)
	}
}

func (t ContentType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidContentType, int(t))
	}
	return []byte(t.String()), nil
}

func (t *ContentType) UnmarshalText(b []byte) error {
	parsed, err := ParseContentType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ContentRef identifies the thing being boosted. It is a comparable value
// and may be used as a map key.
type ContentRef struct {
	Type ContentType `json:"content_type"`
	ID   string      `json:"content_id"`
}

func (r ContentRef) String() string {
	return r.Type.String() + ":" + r.ID
}

// Validate checks the kind and that the id is non-empty.
func (r ContentRef) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidContentType, int(r.Type))
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: empty content id", ErrInvalidContentType)
	}
	return nil
}

// Compare orders refs by kind first, then by id. It returns -1, 0 or +1.
func (r ContentRef) Compare(o ContentRef) int {
	switch {
	case r.Type < o.Type:
		return -1
	case r.Type > o.Type:
		return 1
	}
	return strings.Compare(r.ID, o.ID)
}
