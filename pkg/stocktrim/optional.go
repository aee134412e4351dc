package stocktrim

import (
	"bytes"
	"encoding/json"
)

// Optional is a three-state JSON field: absent, explicitly null, or set.
//
// The zero value is absent. Use it as a non-pointer struct field; with
// encoding/json an absent key leaves the zero value untouched, while a
// literal null calls UnmarshalJSON and marks the field as null.
type Optional[T any] struct {
	value   T
	present bool
	valid   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true, valid: true}
}

// Null returns an Optional that is present and explicitly null.
func Null[T any]() Optional[T] {
	return Optional[T]{present: true}
}

// IsSet reports whether the field appeared in the payload, null or not.
func (o Optional[T]) IsSet() bool { return o.present }

// IsNull reports whether the field appeared as JSON null.
func (o Optional[T]) IsNull() bool { return o.present && !o.valid }

// Get returns the value and whether one is held.
func (o Optional[T]) Get() (T, bool) { return o.value, o.valid }

// OrElse returns the value, or fallback when absent or null.
func (o Optional[T]) OrElse(fallback T) T {
	if o.valid {
		return o.value
	}

	return fallback
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.present = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T

		o.value = zero
		o.valid = false

		return nil
	}

	err := json.Unmarshal(data, &o.value)
	if err != nil {
		return err
	}

	o.valid = true

	return nil
}

// MarshalJSON implements json.Marshaler. Absent fields marshal as null;
// tag them with omitzero to drop them from the output.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}

	return json.Marshal(o.value)
}

// IsZero lets the omitzero tag option skip absent fields.
func (o Optional[T]) IsZero() bool { return !o.present }
