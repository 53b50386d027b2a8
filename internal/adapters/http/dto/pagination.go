package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// Cursor errors.
var (
	// ErrInvalidCursor is returned when cursor decoding fails.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrNoCursor indicates no cursor was provided (first page request).
	ErrNoCursor = errors.New("no cursor provided")
)

// CursorFieldID is the sort key quote cursors are built on. The list order
// is fixed by the store, so the last ID on a page is enough to resume.
const CursorFieldID = "id"

// PaginationRequest represents pagination parameters from the request.
type PaginationRequest struct {
	// Cursor is an opaque string from a previous response's NextCursor.
	Cursor string `form:"cursor" json:"cursor"`

	// Limit is the maximum number of items to return. Zero uses the
	// service default; larger values are clamped to its maximum.
	Limit int `form:"limit" json:"limit" validate:"gte=0"`
}

// AfterID decodes the cursor into the ID of the last item already seen.
// An empty cursor yields "" and no error.
func (p *PaginationRequest) AfterID() (string, error) {
	data, err := DecodeCursor(p.Cursor)
	if errors.Is(err, ErrNoCursor) {
		return "", nil
	}

	if err != nil {
		return "", err
	}

	if data.Field != CursorFieldID || data.ID == "" {
		return "", ErrInvalidCursor
	}

	return data.ID, nil
}

// PaginatedResponse is one page of a list. NextCursor is empty on the last
// page.
type PaginatedResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// NewPaginatedResponse wraps one page. When hasMore is set the cursor is
// built from the last item.
func NewPaginatedResponse[T any](items []T, hasMore bool, cursorBuilder func(T) *CursorData) *PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}

	var nextCursor string

	if hasMore && len(items) > 0 && cursorBuilder != nil {
		nextCursor = EncodeCursor(cursorBuilder(items[len(items)-1]))
	}

	return &PaginatedResponse[T]{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore && nextCursor != "",
	}
}

// CursorData is what a quote list cursor carries. Value holds the quote
// number of the last row so that a decoded cursor is readable in logs; only
// ID positions the next page.
type CursorData struct {
	Field string `json:"f"`
	Value string `json:"v"`
	ID    string `json:"id"`
}

// EncodeCursor returns the URL-safe base64 form of data, or "" for nil.
func EncodeCursor(data *CursorData) string {
	if data == nil {
		return ""
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.URLEncoding.EncodeToString(raw)
}

// DecodeCursor reverses EncodeCursor. An empty string is ErrNoCursor; any
// malformed input is ErrInvalidCursor.
func DecodeCursor(encoded string) (*CursorData, error) {
	if encoded == "" {
		return nil, ErrNoCursor
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, ErrInvalidCursor
	}

	return &data, nil
}

// NewCursor builds cursor data for the row identified by id.
func NewCursor(field, value, id string) *CursorData {
	return &CursorData{Field: field, Value: value, ID: id}
}
