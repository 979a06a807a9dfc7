package domain

import "encoding/json"

// --- Shared Custom Types ---

// Optional wraps a request field so that "field omitted" and "field present"
// are distinguishable after decoding. An omitted field never has its
// UnmarshalJSON called, so Set stays false; a present field (including an
// explicit empty value) flips Set. Update semantics: Set=false means
// "leave untouched", Set=true means "overwrite with Value".
type Optional[T any] struct {
	Value T
	Set   bool
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Some builds a set Optional, mostly for tests and internal defaults.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UpsertRef tags an incoming variant or attribute spec as either an update of
// an existing row or a fresh insert, so the sync engine never branches on a
// nullable id.
type UpsertRef struct {
	ID     int64
	Exists bool
}

func ExistingRef(id int64) UpsertRef { return UpsertRef{ID: id, Exists: true} }
func NewRef() UpsertRef              { return UpsertRef{} }

// Pagination
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// Response standardizes API responses.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse is the stable error body: {error_code, message}.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}
