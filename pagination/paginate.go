// Package pagination implements the keyset pagination used by every list
// endpoint: a strictly descending (sortKey, id) order, an opaque cursor
// seeking past the last row of the previous page, and a limit+1 overfetch to
// distinguish "exactly at the boundary" from "more rows remain".
//
// Offset pagination would skip or duplicate rows when the underlying set
// mutates between page fetches; the two-column seek predicate does not.
package pagination

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"
)

// MaxLimit caps the page size accepted from callers.
const MaxLimit = 100

type Kind int

const (
	KindTime Kind = iota
	KindCount
)

// SortSpec is a totally-ordered, descending sort key: a primary sort column
// (a stored column or an aggregate subquery) plus an always-unique id
// tie-break. Expr and TieBreak are SQL expressions evaluated by the store, so
// an aggregate sort (e.g. trending by view count) pages correctly without any
// in-memory reordering.
type SortSpec struct {
	Name     string
	Kind     Kind
	Expr     string
	TieBreak string
}

// Paginate runs one bounded page query over q, which carries the caller's
// filters, joins and selected columns. It returns up to limit rows in
// descending (Expr, TieBreak) order and a token for the next page, or an
// empty token when the stream is exhausted. key extracts the cursor fields
// from a retained row.
//
// The seek predicate is the standard two-column keyset form:
//
//	(expr < v) OR (expr = v AND tieBreak < id)
//
// so rows tied on the primary key are paged through deterministically.
func Paginate[T any](q *gorm.DB, spec SortSpec, token string, limit int, key func(T) Cursor) ([]T, string, error) {
	if limit < 1 || limit > MaxLimit {
		return nil, "", ErrInvalidLimit
	}

	cursor, err := decodeFor(spec, token)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		v := cursor.seekValue(spec.Kind)
		seek := fmt.Sprintf("((%s) < ? OR ((%s) = ? AND %s < ?))", spec.Expr, spec.Expr, spec.TieBreak)
		q = q.Where(seek, v, v, cursor.ID)
	}

	rows := make([]T, 0, limit+1)
	err = q.
		Order(fmt.Sprintf("(%s) DESC, %s DESC", spec.Expr, spec.TieBreak)).
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	// The extra row only signals that more remain; it is never returned.
	if len(rows) <= limit {
		return rows, "", nil
	}
	rows = rows[:limit]

	next := key(rows[len(rows)-1])
	next.Sort = spec.Name
	return rows, next.Encode(), nil
}

// ParseLimit validates a caller-supplied page size, applying def when the
// caller sent nothing.
func ParseLimit(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidLimit
	}
	if n < 1 || n > MaxLimit {
		return 0, ErrInvalidLimit
	}
	return n, nil
}
