// Package engine is the resource manager: one generic CRUD state machine
// configured per entity by an EntitySchema
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/aethra/haven/internal/errors"
	"github.com/aethra/haven/internal/models"
)

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// FieldType selects how a form value is parsed and rendered
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldLongText  FieldType = "longtext"
	FieldNumber    FieldType = "number"
	FieldInteger   FieldType = "integer"
	FieldBool      FieldType = "bool"
	FieldDate      FieldType = "date"
	FieldList      FieldType = "list"
	FieldImage     FieldType = "image"
	FieldChoice    FieldType = "choice"
	FieldReference FieldType = "reference"
)

// DateLayout is the wire and storage format of date fields
const DateLayout = "2006-01-02"

// FieldSpec describes one editable column
type FieldSpec struct {
	Column   string    `json:"column"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
	Options  []string  `json:"options,omitempty"`
	Ref      string    `json:"ref,omitempty"` // entity code of a reference field
	Nullable bool      `json:"nullable,omitempty"`
	Min      *float64  `json:"min,omitempty"`
	Max      *float64  `json:"max,omitempty"`
	Help     string    `json:"help,omitempty"`
}

// PublishRule maps "Save & Publish" / "Save as Draft" onto a column
type PublishRule struct {
	Column    string      `json:"column"`
	Published interface{} `json:"published"`
	Draft     interface{} `json:"draft"`
	// StampColumn receives the current time on first publish
	StampColumn string `json:"stamp_column,omitempty"`
}

// EntitySchema configures the resource manager for one entity
type EntitySchema struct {
	Code        string                 `json:"code"`
	Singular    string                 `json:"singular"`
	Plural      string                 `json:"plural"`
	Fields      []FieldSpec            `json:"fields"`
	Defaults    map[string]interface{} `json:"defaults"`
	SlugFrom    string                 `json:"slug_from,omitempty"`
	Publish     *PublishRule           `json:"publish,omitempty"`
	ListColumns []string               `json:"list_columns"`

	// Check runs after field parsing, for rules spanning several fields
	Check func(values map[string]interface{}) error `json:"-"`
}

// SaveMode selects how the publish rule is applied on submit
type SaveMode string

const (
	SaveDefault SaveMode = ""
	SavePublish SaveMode = "publish"
	SaveDraft   SaveMode = "draft"
)

// Form is the editable state of one record keyed by column
type Form map[string]interface{}

// Field returns the spec of a column
func (s *EntitySchema) Field(column string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Column == column {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// NewForm returns a fresh copy of the defaults
func (s *EntitySchema) NewForm() Form {
	form := make(Form, len(s.Defaults))
	for k, v := range s.Defaults {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		form[k] = v
	}
	return form
}

func bound(v float64) *float64 {
	return &v
}

// =============================================================================
// FORM CLEANING
// =============================================================================

// Clean validates form and converts it into a column patch. Only columns of
// the schema are emitted; unknown keys are ignored. A blank or missing
// required field is rejected; any other missing key is left out of the patch.
func (s *EntitySchema) Clean(form Form, mode SaveMode) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(s.Fields))

	for _, f := range s.Fields {
		raw, present := form[f.Column]
		if f.Required && isBlank(raw) {
			return nil, apperrors.NewValidationError(f.Column, f.Label+" is required")
		}
		if !present {
			continue
		}

		value, err := parseValue(f, raw)
		if err != nil {
			return nil, err
		}
		out[f.Column] = value
	}

	s.applySlug(form, out)

	if s.Publish != nil {
		switch mode {
		case SavePublish:
			out[s.Publish.Column] = s.Publish.Published
		case SaveDraft:
			out[s.Publish.Column] = s.Publish.Draft
		}
		// a record published by any route gets its first-publish stamp
		if s.Publish.StampColumn != "" && out[s.Publish.Column] == s.Publish.Published && isBlank(form[s.Publish.StampColumn]) {
			out[s.Publish.StampColumn] = time.Now()
		}
	}

	if s.Check != nil {
		if err := s.Check(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// applySlug derives the slug from the source column when it is blank and
// normalizes a slug typed by hand
func (s *EntitySchema) applySlug(form Form, out map[string]interface{}) {
	if s.SlugFrom == "" {
		return
	}
	if typed, ok := out["slug"].(string); ok && typed != "" {
		out["slug"] = Slugify(typed)
		return
	}
	if source, ok := out[s.SlugFrom].(string); ok && source != "" {
		out["slug"] = Slugify(source)
		return
	}
	if source, ok := form[s.SlugFrom].(string); ok && source != "" {
		out["slug"] = Slugify(source)
	}
}

func isBlank(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []interface{}:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case models.StringList:
		return len(val) == 0
	default:
		return false
	}
}

func parseValue(f FieldSpec, raw interface{}) (interface{}, error) {
	switch f.Type {
	case FieldNumber:
		n, err := toFloat(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(f.Column, f.Label+" must be a number")
		}
		return n, checkRange(f, n)

	case FieldInteger:
		n, err := toFloat(raw)
		if err != nil || n != float64(int64(n)) {
			return nil, apperrors.NewValidationError(f.Column, f.Label+" must be a whole number")
		}
		return int(n), checkRange(f, n)

	case FieldBool:
		return toBool(raw), nil

	case FieldDate:
		text := toText(raw)
		if text == "" {
			return "", nil
		}
		if _, err := time.Parse(DateLayout, text); err != nil {
			return nil, apperrors.NewValidationError(f.Column, f.Label+" must be a date (YYYY-MM-DD)")
		}
		return text, nil

	case FieldList:
		return toList(raw), nil

	case FieldChoice:
		text := toText(raw)
		if text == "" {
			return "", nil
		}
		for _, opt := range f.Options {
			if opt == text {
				return text, nil
			}
		}
		return nil, apperrors.NewValidationError(f.Column, fmt.Sprintf("%s must be one of %s", f.Label, strings.Join(f.Options, ", ")))

	case FieldReference:
		text := toText(raw)
		if text == "" && f.Nullable {
			return nil, nil
		}
		return text, nil

	default:
		return toText(raw), nil
	}
}

func checkRange(f FieldSpec, n float64) error {
	if f.Min != nil && n < *f.Min {
		return apperrors.NewValidationError(f.Column, fmt.Sprintf("%s must be at least %v", f.Label, *f.Min))
	}
	if f.Max != nil && n > *f.Max {
		return apperrors.NewValidationError(f.Column, fmt.Sprintf("%s must be at most %v", f.Label, *f.Max))
	}
	return nil
}

func toText(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case *string:
		if v == nil {
			return ""
		}
		return strings.TrimSpace(*v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func toFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return 0, nil
		}
		return strconv.ParseFloat(text, 64)
	default:
		return 0, fmt.Errorf("unsupported number %T", raw)
	}
}

func toBool(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "yes":
			return true
		}
	case float64:
		return v != 0
	}
	return false
}

// toList accepts a JSON array or a comma / newline separated string
func toList(raw interface{}) models.StringList {
	out := models.StringList{}
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			add(toText(item))
		}
	case []string:
		for _, item := range v {
			add(item)
		}
	case models.StringList:
		for _, item := range v {
			add(item)
		}
	case string:
		for _, item := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '\n' }) {
			add(item)
		}
	}
	return out
}

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into one hyphen, trimming hyphens at both ends
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
