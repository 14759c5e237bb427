package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCursor reports a malformed token or a cursor issued by a
	// different sort spec than the one it is presented to.
	ErrInvalidCursor = errors.New("pagination: invalid cursor")
	ErrInvalidLimit  = errors.New("pagination: limit out of range")
)

// Cursor carries the sort-key value and the tie-break id of the last row of a
// page. It is exchanged with callers as an opaque base64 token; exactly one of
// Time/Count is set, depending on the sort spec that issued it.
type Cursor struct {
	Sort  string     `json:"s"`
	Time  *time.Time `json:"t,omitempty"`
	Count *int64     `json:"n,omitempty"`
	ID    uuid.UUID  `json:"id"`
}

func TimeCursor(t time.Time, id uuid.UUID) Cursor {
	return Cursor{Time: &t, ID: id}
}

func CountCursor(n int64, id uuid.UUID) Cursor {
	return Cursor{Count: &n, ID: id}
}

func (c Cursor) Encode() string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func Decode(token string) (Cursor, error) {
	var c Cursor
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return c, ErrInvalidCursor
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, ErrInvalidCursor
	}
	if c.ID == uuid.Nil {
		return c, ErrInvalidCursor
	}
	return c, nil
}

// decodeFor decodes token and checks its shape against spec. An empty token
// means "first page" and yields nil.
func decodeFor(spec SortSpec, token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	c, err := Decode(token)
	if err != nil {
		return nil, err
	}
	if c.Sort != spec.Name {
		return nil, ErrInvalidCursor
	}
	switch spec.Kind {
	case KindTime:
		if c.Time == nil {
			return nil, ErrInvalidCursor
		}
	case KindCount:
		if c.Count == nil {
			return nil, ErrInvalidCursor
		}
	}
	return &c, nil
}

func (c Cursor) seekValue(kind Kind) interface{} {
	if kind == KindTime {
		return *c.Time
	}
	return *c.Count
}
