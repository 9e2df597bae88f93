package models

import (
	"bytes"
	"encoding/json"
)

// OptionalString tracks whether a JSON field was sent at all and whether it
// was sent as null. The zero value means "absent".
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		o.Value = ""
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Some returns a present, non-null value.
func Some(v string) OptionalString {
	return OptionalString{Set: true, Value: v}
}

// Null returns a present, explicit null.
func Null() OptionalString {
	return OptionalString{Set: true, Null: true}
}

// ProfilePatch is a partial update of a profile. Only fields that are Set are
// written; a Set+Null field clears the column.
type ProfilePatch struct {
	FullName           OptionalString `json:"full_name"`
	GradeLevel         OptionalString `json:"grade_level"`
	SchoolName         OptionalString `json:"school_name"`
	LanguagePreference OptionalString `json:"language_preference"`
}

func (p ProfilePatch) IsEmpty() bool {
	return !p.FullName.Set && !p.GradeLevel.Set && !p.SchoolName.Set && !p.LanguagePreference.Set
}

// Assignments maps column names to new values for every present field. Null
// fields map to nil. The caller adds updated_at.
func (p ProfilePatch) Assignments() map[string]interface{} {
	out := make(map[string]interface{})
	add := func(column string, field OptionalString) {
		if !field.Set {
			return
		}
		if field.Null {
			out[column] = nil
			return
		}
		out[column] = field.Value
	}
	add("full_name", p.FullName)
	add("grade_level", p.GradeLevel)
	add("school_name", p.SchoolName)
	add("language_preference", p.LanguagePreference)
	return out
}
