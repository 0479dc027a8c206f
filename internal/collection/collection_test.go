package collection

import "testing"

type stubItem struct{ id string }

func (s stubItem) Identifier() string { return s.id }

func TestAddRejectsDuplicateID(t *testing.T) {
	c := New[stubItem]()
	if !c.Add(stubItem{"a"}) {
		t.Fatalf("first add should succeed")
	}
	if c.Add(stubItem{"a"}) {
		t.Fatalf("duplicate id should be rejected")
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestRemovePreservesOrderOfRemainingItems(t *testing.T) {
	c := New[stubItem]()
	c.Add(stubItem{"a"})
	c.Add(stubItem{"b"})
	c.Add(stubItem{"c"})

	if !c.Remove("b") {
		t.Fatalf("expected b to be removed")
	}

	got := c.Items()
	if len(got) != 2 || got[0].id != "a" || got[1].id != "c" {
		t.Fatalf("Items() = %v, want [a c]", got)
	}
}

func TestRemoveUnknownIDReturnsFalse(t *testing.T) {
	c := New[stubItem]()
	if c.Remove("missing") {
		t.Fatalf("removing an absent id should return false")
	}
}

func TestOnAddAndOnRemoveFireOnce(t *testing.T) {
	c := New[stubItem]()
	var added, removed int
	c.OnAdd(func(stubItem) { added++ })
	c.OnRemove(func(stubItem) { removed++ })

	c.Add(stubItem{"a"})
	c.Add(stubItem{"a"}) // rejected duplicate, must not fire OnAdd again
	c.Remove("a")
	c.Remove("a") // already gone, must not fire OnRemove again

	if added != 1 {
		t.Fatalf("added callbacks = %d, want 1", added)
	}
	if removed != 1 {
		t.Fatalf("removed callbacks = %d, want 1", removed)
	}
}

func TestItemsReflectsInsertionOrderNotMapOrder(t *testing.T) {
	c := New[stubItem]()
	ids := []string{"z", "a", "m", "q"}
	for _, id := range ids {
		c.Add(stubItem{id})
	}
	got := c.Items()
	for i, id := range ids {
		if got[i].id != id {
			t.Fatalf("Items()[%d] = %q, want %q", i, got[i].id, id)
		}
	}
}
