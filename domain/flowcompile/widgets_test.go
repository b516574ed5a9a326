package flowcompile_test

import (
	"flowdeck/domain"
	"flowdeck/domain/flowcompile"
	"testing"

	. "github.com/onsi/gomega"
)

func TestMapWidget(t *testing.T) {
	RegisterTestingT(t)

	t.Run("textarea maps to a multi line widget", func(t *testing.T) {
		w := flowcompile.MapWidget(domain.FlowComponent{
			ComponentType: domain.ComponentTextarea, ComponentKey: "bio", Label: "About you", Required: true,
		})
		Expect(w.Type).To(Equal("TextArea"))
		Expect(w.Name).To(Equal("bio"))
		Expect(w.Label).To(Equal("About you"))
		Expect(*w.Required).To(BeTrue())
		Expect(w.InputType).To(BeEmpty())
	})

	t.Run("list backed types carry a data source", func(t *testing.T) {
		options := domain.JSONList{
			{"value": "y", "label": "Yes"},
			{"id": float64(2)},
		}
		for componentType, widgetType := range map[domain.ComponentType]string{
			domain.ComponentSelect:   "Dropdown",
			domain.ComponentRadio:    "RadioButtonsGroup",
			domain.ComponentCheckbox: "CheckboxGroup",
		} {
			w := flowcompile.MapWidget(domain.FlowComponent{
				ComponentType: componentType, VariableKey: "answer", Options: options,
			})
			Expect(w.Type).To(Equal(widgetType))
			Expect(w.Name).To(Equal("answer"))
			Expect(w.DataSource).To(Equal([]flowcompile.DataSourceItem{
				{ID: "y", Title: "Yes"},
				{ID: "2", Title: "2"},
			}))
		}
	})

	t.Run("email phone and number keep a specialized input type", func(t *testing.T) {
		for componentType, inputType := range map[domain.ComponentType]string{
			domain.ComponentEmail:  "email",
			domain.ComponentPhone:  "phone",
			domain.ComponentNumber: "number",
		} {
			w := flowcompile.MapWidget(domain.FlowComponent{ComponentType: componentType, ComponentKey: "k"})
			Expect(w.Type).To(Equal("TextInput"))
			Expect(w.InputType).To(Equal(inputType))
		}
	})

	t.Run("date time datetime and unknown types degrade to plain text input", func(t *testing.T) {
		for _, componentType := range []domain.ComponentType{
			domain.ComponentText, domain.ComponentDate, domain.ComponentTime,
			domain.ComponentDatetime, domain.ComponentType("whatever"),
		} {
			w := flowcompile.MapWidget(domain.FlowComponent{ComponentType: componentType, ComponentKey: "k"})
			Expect(w.Type).To(Equal("TextInput"))
			Expect(w.InputType).To(Equal("text"))
		}
	})

	t.Run("name falls back from variable key to component key to order index", func(t *testing.T) {
		Expect(flowcompile.MapWidget(domain.FlowComponent{
			ComponentType: domain.ComponentText, VariableKey: "v", ComponentKey: "c", OrderIndex: 4,
		}).Name).To(Equal("v"))
		Expect(flowcompile.MapWidget(domain.FlowComponent{
			ComponentType: domain.ComponentText, ComponentKey: "c", OrderIndex: 4,
		}).Name).To(Equal("c"))
		Expect(flowcompile.MapWidget(domain.FlowComponent{
			ComponentType: domain.ComponentText, OrderIndex: 4,
		}).Name).To(Equal("field_4"))
	})

	t.Run("options without derivable id or title are dropped", func(t *testing.T) {
		w := flowcompile.MapWidget(domain.FlowComponent{
			ComponentType: domain.ComponentSelect,
			ComponentKey:  "k",
			Options: domain.JSONList{
				{"value": map[string]interface{}{"nested": true}},
				{"value": "", "id": ""},
				{"label": "No id at all"},
				{"value": "kept", "title": "Kept"},
			},
		})
		Expect(w.DataSource).To(Equal([]flowcompile.DataSourceItem{
			{ID: "option_3", Title: "No id at all"},
			{ID: "kept", Title: "Kept"},
		}))
	})
}
