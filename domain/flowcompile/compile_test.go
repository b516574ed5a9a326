package flowcompile_test

import (
	"encoding/json"
	"flowdeck/domain"
	"flowdeck/domain/flowcompile"
	"testing"

	. "github.com/onsi/gomega"
)

var template = domain.FlowTemplate{ID: 100, Name: "Onboarding"}

func screenNode(key, title string, order int) flowcompile.ScreenNode {
	return flowcompile.ScreenNode{
		Screen: domain.FlowScreen{ScreenKey: key, Title: title, OrderIndex: order},
	}
}

func nextAction(targetKey string, order int) domain.FlowAction {
	return domain.FlowAction{ActionType: domain.ActionNextScreen, TargetScreenKey: targetKey, OrderIndex: order}
}

func submitAction(order int) domain.FlowAction {
	return domain.FlowAction{ActionType: domain.ActionSubmit, OrderIndex: order}
}

func TestCompileEmptyFlow(t *testing.T) {
	RegisterTestingT(t)

	t.Run("empty screen set compiles to an explicit empty document", func(t *testing.T) {
		doc := flowcompile.Compile(template, nil)
		bytes, err := json.Marshal(doc)
		Expect(err).To(BeNil())
		Expect(string(bytes)).To(MatchJSON(`{"formatVersion": "7.3", "screens": []}`))
	})
}

func TestCompileDeterminism(t *testing.T) {
	RegisterTestingT(t)

	t.Run("compiling twice produces byte identical output", func(t *testing.T) {
		nodes := []flowcompile.ScreenNode{
			{
				Screen: domain.FlowScreen{ScreenKey: "contact", Title: "Contact", Description: "How to reach you", OrderIndex: 2},
				Components: []domain.FlowComponent{
					{ComponentType: domain.ComponentEmail, ComponentKey: "email", VariableKey: "email", Label: "Email", Required: true, OrderIndex: 1},
				},
				Actions: []domain.FlowAction{submitAction(1)},
			},
			{
				Screen:  domain.FlowScreen{ScreenKey: "welcome", Title: "Welcome", OrderIndex: 1, IsEntryPoint: true},
				Actions: []domain.FlowAction{nextAction("contact", 1)},
			},
		}
		first, err := json.Marshal(flowcompile.Compile(template, nodes))
		Expect(err).To(BeNil())
		second, err := json.Marshal(flowcompile.Compile(template, nodes))
		Expect(err).To(BeNil())
		Expect(string(second)).To(Equal(string(first)))
	})
}

func TestCompileScreenOrdering(t *testing.T) {
	RegisterTestingT(t)

	t.Run("compiled screen order follows ascending order index regardless of input order", func(t *testing.T) {
		doc := flowcompile.Compile(template, []flowcompile.ScreenNode{
			screenNode("third", "Third", 30),
			screenNode("first", "First", 10),
			screenNode("second", "Second", 20),
		})
		Expect(doc.Screens).To(HaveLen(3))
		Expect(doc.Screens[0].ID).To(Equal("FIRST"))
		Expect(doc.Screens[1].ID).To(Equal("SECOND"))
		Expect(doc.Screens[2].ID).To(Equal("THIRD"))
	})

	t.Run("ties are broken by original order", func(t *testing.T) {
		doc := flowcompile.Compile(template, []flowcompile.ScreenNode{
			screenNode("a", "A", 5),
			screenNode("b", "B", 5),
		})
		Expect(doc.Screens[0].ID).To(Equal("A"))
		Expect(doc.Screens[1].ID).To(Equal("B"))
	})
}

func TestCompileControlFlow(t *testing.T) {
	RegisterTestingT(t)

	t.Run("a screen whose only action is submit is terminal with empty routing", func(t *testing.T) {
		node := screenNode("done", "Done", 1)
		node.Actions = []domain.FlowAction{submitAction(1)}
		doc := flowcompile.Compile(template, []flowcompile.ScreenNode{node})

		Expect(doc.Screens[0].Terminal).To(BeTrue())
		Expect(doc.Screens[0].Success).ToNot(BeNil())
		Expect(*doc.Screens[0].Success).To(BeTrue())
		Expect(doc.RoutingModel).To(Equal(map[string][]string{"DONE": {}}))

		form := doc.Screens[0].Layout.Children[1]
		footer := form.Children[len(form.Children)-1]
		Expect(footer.Label).To(Equal("Submit"))
		Expect(footer.OnClickAction.Name).To(Equal("complete"))
	})

	t.Run("a screen with only a resolvable next screen action is not terminal", func(t *testing.T) {
		first := screenNode("first", "First", 1)
		first.Actions = []domain.FlowAction{nextAction("second", 1)}
		second := screenNode("second", "Second", 2)

		doc := flowcompile.Compile(template, []flowcompile.ScreenNode{first, second})

		Expect(doc.Screens[0].Terminal).To(BeFalse())
		Expect(doc.Screens[0].Success).To(BeNil())
		Expect(doc.RoutingModel["FIRST"]).To(Equal([]string{"SECOND"}))

		form := doc.Screens[0].Layout.Children[1]
		footer := form.Children[len(form.Children)-1]
		Expect(footer.Label).To(Equal("Continue"))
		Expect(footer.OnClickAction.Name).To(Equal("navigate"))
		Expect(footer.OnClickAction.Next.Name).To(Equal("SECOND"))
	})

	t.Run("an action can target a screen appearing later in the order", func(t *testing.T) {
		first := screenNode("first", "First", 1)
		first.Actions = []domain.FlowAction{nextAction("last", 1)}
		last := screenNode("last", "Last", 99)

		doc := flowcompile.Compile(template, []flowcompile.ScreenNode{first, last})
		Expect(doc.RoutingModel["FIRST"]).To(Equal([]string{"LAST"}))
	})

	t.Run("a dangling target degrades to a terminal screen", func(t *testing.T) {
		node := screenNode("alone", "Alone", 1)
		node.Actions = []domain.FlowAction{nextAction("missing", 1)}
		doc := flowcompile.Compile(template, []flowcompile.ScreenNode{node})

		Expect(doc.Screens[0].Terminal).To(BeTrue())
		Expect(doc.RoutingModel["ALONE"]).To(Equal([]string{}))
	})

	t.Run("only the first action of each type drives control flow", func(t *testing.T) {
		first := screenNode("first", "First", 1)
		first.Actions = []domain.FlowAction{
			nextAction("third", 2),
			nextAction("second", 1),
		}
		second := screenNode("second", "Second", 2)
		third := screenNode("third", "Third", 3)

		doc := flowcompile.Compile(template, []flowcompile.ScreenNode{first, second, third})
		Expect(doc.RoutingModel["FIRST"]).To(Equal([]string{"SECOND"}))
	})

	t.Run("a screen with both submit and resolvable next screen stays terminal with a successor", func(t *testing.T) {
		// legacy behavior preserved on purpose: terminal true together with a
		// non empty routing entry
		first := screenNode("first", "First", 1)
		first.Actions = []domain.FlowAction{nextAction("second", 1), submitAction(2)}
		second := screenNode("second", "Second", 2)

		doc := flowcompile.Compile(template, []flowcompile.ScreenNode{first, second})
		Expect(doc.Screens[0].Terminal).To(BeTrue())
		Expect(*doc.Screens[0].Success).To(BeTrue())
		Expect(doc.RoutingModel["FIRST"]).To(Equal([]string{"SECOND"}))
	})
}

func TestCompileScreenBody(t *testing.T) {
	RegisterTestingT(t)

	t.Run("heading falls back to template name with ordinal and title to the screen id", func(t *testing.T) {
		doc := flowcompile.Compile(template, []flowcompile.ScreenNode{
			screenNode("untitled", "", 1),
		})
		Expect(doc.Screens[0].Title).To(Equal("UNTITLED"))
		Expect(doc.Screens[0].Layout.Children[0].Text).To(Equal("Onboarding - 1"))
	})

	t.Run("summary components render as display only text blocks", func(t *testing.T) {
		node := screenNode("review", "Review", 1)
		node.Components = []domain.FlowComponent{
			{ComponentType: domain.ComponentSummary, ComponentKey: "sum", OrderIndex: 1},
			{ComponentType: domain.ComponentSummary, ComponentKey: "sum2", Label: "Check everything", OrderIndex: 2},
		}
		doc := flowcompile.Compile(template, []flowcompile.ScreenNode{node})

		form := doc.Screens[0].Layout.Children[1]
		Expect(form.Type).To(Equal("Form"))
		Expect(form.Name).To(Equal("review_form"))
		Expect(form.Children[0]).To(Equal(flowcompile.Block{Type: "TextBody", Text: "Review your details"}))
		Expect(form.Children[1]).To(Equal(flowcompile.Block{Type: "TextBody", Text: "Check everything"}))
	})

	t.Run("summary detection ignores stored type casing", func(t *testing.T) {
		node := screenNode("review", "Review", 1)
		node.Components = []domain.FlowComponent{
			{ComponentType: domain.ComponentType("Summary"), ComponentKey: "sum", Label: "Check everything", OrderIndex: 1},
		}
		doc := flowcompile.Compile(template, []flowcompile.ScreenNode{node})

		form := doc.Screens[0].Layout.Children[1]
		Expect(form.Children[0]).To(Equal(flowcompile.Block{Type: "TextBody", Text: "Check everything"}))
	})

	t.Run("full document shape", func(t *testing.T) {
		welcome := flowcompile.ScreenNode{
			Screen: domain.FlowScreen{ScreenKey: "welcome", Title: "Welcome", Description: "Tell us about you", OrderIndex: 1},
			Components: []domain.FlowComponent{
				{ComponentType: domain.ComponentText, VariableKey: "name", Label: "Name", Required: true, OrderIndex: 1},
			},
			Actions: []domain.FlowAction{nextAction("done", 1)},
		}
		done := flowcompile.ScreenNode{
			Screen:  domain.FlowScreen{ScreenKey: "done", Title: "Done", OrderIndex: 2},
			Actions: []domain.FlowAction{{ActionType: domain.ActionSubmit, Label: "Finish", OrderIndex: 1}},
		}

		bytes, err := json.Marshal(flowcompile.Compile(template, []flowcompile.ScreenNode{welcome, done}))
		Expect(err).To(BeNil())
		Expect(string(bytes)).To(MatchJSON(`{
			"formatVersion": "7.3",
			"routingModel": {"WELCOME": ["DONE"], "DONE": []},
			"screens": [
				{
					"id": "WELCOME", "title": "Welcome", "terminal": false, "data": {},
					"layout": {"type": "single-column", "children": [
						{"type": "TextHeading", "text": "Welcome"},
						{"type": "TextBody", "text": "Tell us about you"},
						{"type": "Form", "name": "welcome_form", "children": [
							{"type": "TextInput", "name": "name", "label": "Name", "required": true, "input-type": "text"},
							{"type": "Footer", "label": "Continue",
								"on-click-action": {"name": "navigate", "next": {"type": "screen", "name": "DONE"}}}
						]}
					]}
				},
				{
					"id": "DONE", "title": "Done", "terminal": true, "success": true, "data": {},
					"layout": {"type": "single-column", "children": [
						{"type": "TextHeading", "text": "Done"},
						{"type": "Form", "name": "done_form", "children": [
							{"type": "Footer", "label": "Finish", "on-click-action": {"name": "complete"}}
						]}
					]}
				}
			]
		}`))
	})
}

func TestCompileWithCache(t *testing.T) {
	RegisterTestingT(t)

	t.Run("identical cache key returns the same document", func(t *testing.T) {
		nodes := []flowcompile.ScreenNode{screenNode("a", "A", 1)}
		first := flowcompile.CompileWithCache("v1@t1", template, nodes)
		second := flowcompile.CompileWithCache("v1@t1", template, nodes)
		Expect(second).To(BeIdenticalTo(first))

		third := flowcompile.CompileWithCache("v1@t2", template, nodes)
		Expect(third).ToNot(BeIdenticalTo(first))
		Expect(third).To(Equal(first))
	})
}
