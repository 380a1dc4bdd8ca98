package models

import "encoding/json"

// Patch distinguishes "field absent from the payload" from "field set to a
// value". A plain pointer cannot tell the two apart once the zero value is a
// legal input, so partial updates decode into Patch fields and only apply
// the ones that were actually supplied.
type Patch[T any] struct {
	Set   bool
	Value T
}

func (p *Patch[T]) UnmarshalJSON(b []byte) error {
	p.Set = true
	return json.Unmarshal(b, &p.Value)
}

func (p Patch[T]) MarshalJSON() ([]byte, error) {
	if !p.Set {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// Apply overwrites dst when the field was supplied.
func (p Patch[T]) Apply(dst *T) {
	if p.Set {
		*dst = p.Value
	}
}
