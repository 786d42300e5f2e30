package document_test

import (
	"fmt"
	"math/rand"
	"testing"

	"taskdoc/internal/document"
	"taskdoc/internal/domain"
)

// seqIDs returns a deterministic id generator: b1, b2, ...
func seqIDs() document.Option {
	n := 0
	return document.WithIDFunc(func() string {
		n++
		return fmt.Sprintf("b%d", n)
	})
}

func ids(d *document.Document) []string {
	out := make([]string, 0, d.Len())
	for _, b := range d.Blocks() {
		out = append(out, b.ID)
	}
	return out
}

func mustValid(t *testing.T, d *document.Document) {
	t.Helper()
	if err := d.Validate(); err != nil {
		t.Fatalf("invariant broken: %v", err)
	}
}

// ─────────────────────────────────────────────────────────────
// Mutator
// ─────────────────────────────────────────────────────────────

func TestNew_SingleEmptyParagraph(t *testing.T) {
	d := document.New(seqIDs())
	mustValid(t, d)
	if d.Len() != 1 {
		t.Fatalf("expected 1 block, got %d", d.Len())
	}
	b := d.First()
	if b.Type != domain.BlockTypeParagraph || b.Content != "" || b.Position != 0 {
		t.Errorf("unexpected initial block %+v", b)
	}
}

func TestInsertAfter_MiddleAndEnd(t *testing.T) {
	d := document.New(seqIDs())
	first := d.First()

	second := d.InsertAfter(first.ID, domain.BlockTypeParagraph)
	third := d.InsertAfter("", domain.BlockTypeQuote)
	middle := d.InsertAfter(first.ID, domain.BlockTypeCode)
	mustValid(t, d)

	want := []string{first.ID, middle.ID, second.ID, third.ID}
	got := ids(d)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if middle.Position != 1 || middle.Type != domain.BlockTypeCode || middle.Content != "" {
		t.Errorf("unexpected inserted block %+v", middle)
	}
	if b, _ := d.Block(third.ID); b.Position != 3 {
		t.Errorf("appended block position = %d, want 3", b.Position)
	}
}

func TestInsertAfter_UnknownTargetAppends(t *testing.T) {
	d := document.New(seqIDs())
	d.InsertAfter("", domain.BlockTypeParagraph)
	b := d.InsertAfter("missing", domain.BlockTypeParagraph)
	if d.IndexOf(b.ID) != d.Len()-1 {
		t.Errorf("expected append at end, got index %d", d.IndexOf(b.ID))
	}
}

func TestInsertAfter_InvalidTypeFallsBackToParagraph(t *testing.T) {
	d := document.New(seqIDs())
	b := d.InsertAfter(d.First().ID, domain.BlockType("table"))
	if b.Type != domain.BlockTypeParagraph {
		t.Errorf("type = %q, want paragraph", b.Type)
	}
}

func TestUpdateContent(t *testing.T) {
	d := document.New(seqIDs())
	id := d.First().ID
	if !d.UpdateContent(id, "Hello") {
		t.Fatal("expected change")
	}
	if d.UpdateContent(id, "Hello") {
		t.Error("same text should not report a change")
	}
	if d.UpdateContent("missing", "x") {
		t.Error("unknown id should be a no-op")
	}
	b, _ := d.Block(id)
	if b.Content != "Hello" || b.Type != domain.BlockTypeParagraph || b.Position != 0 {
		t.Errorf("unexpected block %+v", b)
	}
}

func TestChangeType_KeepsIdentityAndContent(t *testing.T) {
	d := document.New(seqIDs())
	id := d.First().ID
	d.UpdateContent(id, "Title")

	if !d.ChangeType(id, domain.BlockTypeHeading1) {
		t.Fatal("expected change")
	}
	if d.ChangeType(id, domain.BlockType("nope")) {
		t.Error("invalid type should be refused")
	}
	b, _ := d.Block(id)
	if b.ID != id || b.Content != "Title" || b.Type != domain.BlockTypeHeading1 || b.Position != 0 {
		t.Errorf("unexpected block %+v", b)
	}
}

func TestDelete_SoleBlockIsNoop(t *testing.T) {
	d := document.New(seqIDs())
	before := d.First()
	if d.Delete(before.ID) {
		t.Fatal("deleting the last block must be refused")
	}
	after := d.First()
	if d.Len() != 1 || after != before {
		t.Errorf("document changed: %+v -> %+v", before, after)
	}
}

func TestDelete_RenumbersDensely(t *testing.T) {
	d := document.New(seqIDs())
	a := d.First()
	b := d.InsertAfter(a.ID, domain.BlockTypeParagraph)
	c := d.InsertAfter(b.ID, domain.BlockTypeParagraph)

	if !d.Delete(b.ID) {
		t.Fatal("expected delete")
	}
	mustValid(t, d)
	if got := ids(d); len(got) != 2 || got[0] != a.ID || got[1] != c.ID {
		t.Errorf("order = %v", got)
	}
	if d.Delete("missing") {
		t.Error("unknown id should be a no-op")
	}
}

func TestReorder_MovesAndClamps(t *testing.T) {
	d := document.New(seqIDs())
	a := d.First()
	b := d.InsertAfter(a.ID, domain.BlockTypeParagraph)
	c := d.InsertAfter(b.ID, domain.BlockTypeParagraph)

	// Scenario 5: drag position 2 to position 0.
	if !d.Reorder(c.ID, 0) {
		t.Fatal("expected reorder")
	}
	mustValid(t, d)
	if got := ids(d); got[0] != c.ID || got[1] != a.ID || got[2] != b.ID {
		t.Fatalf("order = %v", got)
	}

	d.Reorder(c.ID, 99)
	if d.IndexOf(c.ID) != 2 {
		t.Errorf("index clamp high: got %d", d.IndexOf(c.ID))
	}
	d.Reorder(c.ID, -5)
	if d.IndexOf(c.ID) != 0 {
		t.Errorf("index clamp low: got %d", d.IndexOf(c.ID))
	}
	if d.Reorder(c.ID, 0) {
		t.Error("moving to the same index should not report a change")
	}
}

func TestMutator_RandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	d := document.New(seqIDs())
	types := domain.BlockTypes

	for step := 0; step < 2000; step++ {
		blocks := d.Blocks()
		target := blocks[rng.Intn(len(blocks))].ID
		before := map[string]bool{}
		for _, id := range ids(d) {
			before[id] = true
		}

		switch rng.Intn(5) {
		case 0:
			d.InsertAfter(target, types[rng.Intn(len(types))])
		case 1:
			d.UpdateContent(target, fmt.Sprintf("text %d", step))
		case 2:
			d.ChangeType(target, types[rng.Intn(len(types))])
		case 3:
			d.Delete(target)
		case 4:
			d.Reorder(target, rng.Intn(len(blocks)+4)-2)
			after := ids(d)
			if len(after) != len(before) {
				t.Fatalf("step %d: reorder changed block count", step)
			}
			for _, id := range after {
				if !before[id] {
					t.Fatalf("step %d: reorder introduced id %s", step, id)
				}
			}
		}
		if err := d.Validate(); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
	}
}

func TestNumberedIndex(t *testing.T) {
	d := document.New(seqIDs())
	a := d.First()
	d.ChangeType(a.ID, domain.BlockTypeNumberedList)
	p := d.InsertAfter(a.ID, domain.BlockTypeParagraph)
	b := d.InsertAfter(p.ID, domain.BlockTypeNumberedList)

	if n := d.NumberedIndex(a.ID); n != 1 {
		t.Errorf("first numbered = %d, want 1", n)
	}
	if n := d.NumberedIndex(b.ID); n != 2 {
		t.Errorf("second numbered = %d, want 2", n)
	}
	if n := d.NumberedIndex(p.ID); n != 0 {
		t.Errorf("paragraph = %d, want 0", n)
	}
}

func TestFirstWithContent(t *testing.T) {
	d := document.New(seqIDs())
	b := d.InsertAfter(d.First().ID, domain.BlockTypeParagraph)
	if d.FirstWithContent().ID != d.First().ID {
		t.Error("expected first block when all are blank")
	}
	d.UpdateContent(b.ID, "  body ")
	if d.FirstWithContent().ID != b.ID {
		t.Error("expected the block with content")
	}
}
