package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/blockpad/pkg/document"
)

// docTypes collects every block type in a document, nested and chained
// blocks included.
func docTypes(t *testing.T, doc *document.Document) map[string]int {
	t.Helper()
	types := map[string]int{}
	doc.Walk(func(n *document.Node) {
		types[n.Type]++
	})
	return types
}

func TestStarterDocumentEmpty(t *testing.T) {
	doc, err := starterDocument("empty")
	if err != nil {
		t.Fatalf("starterDocument(empty) error: %v", err)
	}
	if len(doc.Blocks) != 0 {
		t.Errorf("empty template should have no blocks, got %d", len(doc.Blocks))
	}
}

func TestStarterDocumentGreeting(t *testing.T) {
	doc, err := starterDocument("greeting")
	if err != nil {
		t.Fatalf("starterDocument(greeting) error: %v", err)
	}
	if err := document.Validate(doc); err != nil {
		t.Fatalf("greeting template should validate: %v", err)
	}

	if len(doc.Blocks) != 1 {
		t.Fatalf("greeting should be a single stack, got %d", len(doc.Blocks))
	}

	types := docTypes(t, doc)
	if types["text_print"] != 1 {
		t.Errorf("greeting should contain one text_print, got %d", types["text_print"])
	}
	if types["text"] != 1 {
		t.Errorf("greeting should contain one text block, got %d", types["text"])
	}
}

func TestStarterDocumentCounter(t *testing.T) {
	doc, err := starterDocument("counter")
	if err != nil {
		t.Fatalf("starterDocument(counter) error: %v", err)
	}
	if err := document.Validate(doc); err != nil {
		t.Fatalf("counter template should validate: %v", err)
	}

	// The set block chains into the repeat, so the document has one stack.
	if len(doc.Blocks) != 1 {
		t.Fatalf("counter should be a single stack, got %d", len(doc.Blocks))
	}

	types := docTypes(t, doc)
	for _, want := range []string{"variables_set", "controls_repeat_ext", "text_print", "variables_get"} {
		if types[want] == 0 {
			t.Errorf("counter should contain a %s block", want)
		}
	}
	if types["math_number"] != 2 {
		t.Errorf("counter should contain two math_number blocks, got %d", types["math_number"])
	}
}

func TestStarterDocumentUnknown(t *testing.T) {
	_, err := starterDocument("bogus")
	if err == nil {
		t.Fatal("starterDocument(bogus) should fail")
	}
	if !strings.Contains(err.Error(), "unknown template") {
		t.Errorf("error should name the unknown template, got %v", err)
	}
}
