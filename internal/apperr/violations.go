package apperr

import "strings"

type violation struct {
	field   string
	message string
}

// Violations collects field-level validation failures in the order they were
// detected.
type Violations struct {
	items []violation
}

// Add records a failure for field.
func (v *Violations) Add(field, message string) {
	v.items = append(v.items, violation{field: field, message: message})
}

// Check records a failure when ok is false.
func (v *Violations) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

func (v *Violations) Empty() bool { return len(v.items) == 0 }

func (v *Violations) Len() int { return len(v.items) }

// Err returns nil when nothing was recorded, else a Validation error whose
// message is "field: message" pairs joined by ", ".
func (v *Violations) Err() error {
	if v.Empty() {
		return nil
	}
	parts := make([]string, 0, len(v.items))
	for _, it := range v.items {
		parts = append(parts, it.field+": "+it.message)
	}
	return &Error{Kind: Validation, Message: strings.Join(parts, ", ")}
}
