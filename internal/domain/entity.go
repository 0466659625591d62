package domain

import "encoding/json"

// EntityValue is the value of an extracted entity. A clean value marshals
// as a bare JSON string; a value that failed normalization marshals as
// {"raw_output": "...", "manual_check": true} so the UI can surface it for
// human review instead of dropping it.
type EntityValue struct {
	Raw         string
	ManualCheck bool
}

// Value creates a clean EntityValue.
func Value(s string) EntityValue {
	return EntityValue{Raw: s}
}

// FallbackValue creates an EntityValue flagged for manual review.
func FallbackValue(raw string) EntityValue {
	return EntityValue{Raw: raw, ManualCheck: true}
}

// String returns the raw string form regardless of review state.
func (v EntityValue) String() string { return v.Raw }

// IsZero reports whether the value is empty and unflagged.
func (v EntityValue) IsZero() bool { return v.Raw == "" && !v.ManualCheck }

type fallbackValue struct {
	RawOutput   string `json:"raw_output"`
	ManualCheck bool   `json:"manual_check"`
}

func (v EntityValue) MarshalJSON() ([]byte, error) {
	if v.ManualCheck {
		return json.Marshal(fallbackValue{RawOutput: v.Raw, ManualCheck: true})
	}
	return json.Marshal(v.Raw)
}

func (v *EntityValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = EntityValue{Raw: s}
		return nil
	}
	var fb fallbackValue
	if err := json.Unmarshal(data, &fb); err == nil {
		*v = EntityValue{Raw: fb.RawOutput, ManualCheck: fb.ManualCheck}
		return nil
	}
	// Numbers, booleans and other scalars from upstream extractors are
	// kept verbatim as their JSON text.
	*v = EntityValue{Raw: string(data)}
	return nil
}

// Entity is one extracted key-value pair on a page. BackendEntityKey is
// the stable machine key used for joining across extraction sources and
// for formatting/inclusion rules; EntityName is display-only.
type Entity struct {
	EntityName        string
	BackendEntityKey  string
	EntityValue       EntityValue
	EntityContext     string
	EntityDataType    string
	EntityDescription string
	CustomerType      CustomerType
	RPType            string
	SourceModel       string
	Checked           bool
	ManualCheck       bool

	// Extra carries unknown template keys through unmodified so new
	// columns in the document-type table never break round-tripping.
	Extra map[string]json.RawMessage
}

// knownEntityKeys are the JSON keys handled by the struct fields above.
var knownEntityKeys = map[string]struct{}{
	"entity_name":              {},
	"backend_entity_key":       {},
	"entity_value":             {},
	"entity_context":           {},
	"entity_data_type":         {},
	"entity_description":       {},
	"entity_key_customer_type": {},
	"entity_key_rp_type":       {},
	"model":                    {},
	"checked":                  {},
	"manual_check":             {},
}

type entityJSON struct {
	EntityName        string       `json:"entity_name"`
	BackendEntityKey  string       `json:"backend_entity_key"`
	EntityValue       EntityValue  `json:"entity_value"`
	EntityContext     string       `json:"entity_context,omitempty"`
	EntityDataType    string       `json:"entity_data_type,omitempty"`
	EntityDescription string       `json:"entity_description,omitempty"`
	CustomerType      CustomerType `json:"entity_key_customer_type,omitempty"`
	RPType            string       `json:"entity_key_rp_type,omitempty"`
	SourceModel       string       `json:"model,omitempty"`
	Checked           bool         `json:"checked"`
	ManualCheck       bool         `json:"manual_check,omitempty"`
}

func (e Entity) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(entityJSON{
		EntityName:        e.EntityName,
		BackendEntityKey:  e.BackendEntityKey,
		EntityValue:       e.EntityValue,
		EntityContext:     e.EntityContext,
		EntityDataType:    e.EntityDataType,
		EntityDescription: e.EntityDescription,
		CustomerType:      e.CustomerType,
		RPType:            e.RPType,
		SourceModel:       e.SourceModel,
		Checked:           e.Checked,
		ManualCheck:       e.ManualCheck,
	})
	if err != nil || len(e.Extra) == 0 {
		return base, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range e.Extra {
		if _, known := knownEntityKeys[k]; known {
			continue
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}

func (e *Entity) UnmarshalJSON(data []byte) error {
	var base entityJSON
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Entity{
		EntityName:        base.EntityName,
		BackendEntityKey:  base.BackendEntityKey,
		EntityValue:       base.EntityValue,
		EntityContext:     base.EntityContext,
		EntityDataType:    base.EntityDataType,
		EntityDescription: base.EntityDescription,
		CustomerType:      base.CustomerType,
		RPType:            base.RPType,
		SourceModel:       base.SourceModel,
		Checked:           base.Checked,
		ManualCheck:       base.ManualCheck,
	}
	for k, v := range raw {
		if _, known := knownEntityKeys[k]; known {
			continue
		}
		if e.Extra == nil {
			e.Extra = make(map[string]json.RawMessage)
		}
		e.Extra[k] = v
	}
	return nil
}

// CloneEntities returns a shallow copy of an entity slice. Entity values
// are value types, so mutating the copy never aliases the original slice.
func CloneEntities(entities []Entity) []Entity {
	if entities == nil {
		return nil
	}
	out := make([]Entity, len(entities))
	copy(out, entities)
	return out
}
