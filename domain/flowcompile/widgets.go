package flowcompile

import (
	"encoding/json"
	"flowdeck/domain"
	"fmt"
	"strconv"
	"strings"
)

// MapWidget maps one flow component onto its external widget descriptor.
// Unrecognized component types degrade to a plain text input so a draft in
// any state can still be rendered. Summary components never reach this
// mapper; the compiler renders them as display-only text blocks.
func MapWidget(c domain.FlowComponent) Block {
	name := fieldName(c)
	required := c.Required

	switch strings.ToLower(string(c.ComponentType)) {
	case "textarea":
		return Block{Type: blockTextArea, Name: name, Label: c.Label, Required: &required}
	case "select":
		return Block{Type: blockDropdown, Name: name, Label: c.Label, Required: &required,
			DataSource: mapDataSource(c.Options)}
	case "radio":
		return Block{Type: blockRadioButtonsGroup, Name: name, Label: c.Label, Required: &required,
			DataSource: mapDataSource(c.Options)}
	case "checkbox":
		return Block{Type: blockCheckboxGroup, Name: name, Label: c.Label, Required: &required,
			DataSource: mapDataSource(c.Options)}
	default:
		return Block{Type: blockTextInput, Name: name, Label: c.Label, Required: &required,
			InputType: inputType(c.ComponentType)}
	}
}

func fieldName(c domain.FlowComponent) string {
	if c.VariableKey != "" {
		return c.VariableKey
	}
	if c.ComponentKey != "" {
		return c.ComponentKey
	}
	return fmt.Sprintf("field_%d", c.OrderIndex)
}

// date, time and datetime intentionally fall back to a plain text input:
// the external format offers no matching specialized widget.
func inputType(t domain.ComponentType) string {
	switch strings.ToLower(string(t)) {
	case "email":
		return "email"
	case "phone":
		return "phone"
	case "number":
		return "number"
	default:
		return "text"
	}
}

// mapDataSource maps raw option objects to {id, title} entries. The id is
// derived from value, then id, then the 1-based position; the title from
// label, then title, then the stringified id. Options whose id or title
// cannot be derived are dropped.
func mapDataSource(options domain.JSONList) []DataSourceItem {
	items := make([]DataSourceItem, 0, len(options))
	for i, option := range options {
		id := deriveOptionText(option, "value", "id")
		if id == "" {
			if _, hasValue := option["value"]; !hasValue {
				if _, hasId := option["id"]; !hasId {
					id = fmt.Sprintf("option_%d", i+1)
				}
			}
		}
		if id == "" {
			continue
		}
		title := deriveOptionText(option, "label", "title")
		if title == "" {
			title = id
		}
		items = append(items, DataSourceItem{ID: id, Title: title})
	}
	return items
}

func deriveOptionText(option map[string]interface{}, fields ...string) string {
	for _, field := range fields {
		value, found := option[field]
		if !found {
			continue
		}
		if text := stringify(value); text != "" {
			return text
		}
	}
	return ""
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
