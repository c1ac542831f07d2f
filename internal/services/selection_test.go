package services

import "testing"

func TestSelectionToggle(t *testing.T) {
	sel := NewSelectionSet()

	sel.Toggle("ord_1")
	sel.Toggle("ord_2")
	if !equalIDs(sel.IDs(), []string{"ord_1", "ord_2"}) {
		t.Fatalf("ids = %v", sel.IDs())
	}

	sel.Toggle("ord_1")
	if sel.Selected("ord_1") {
		t.Fatal("ord_1 should be deselected after second toggle")
	}
	if !equalIDs(sel.IDs(), []string{"ord_2"}) {
		t.Fatalf("ids = %v", sel.IDs())
	}
}

func TestSelectionSelectAllReplacesSelection(t *testing.T) {
	sel := NewSelectionSet()
	sel.Select("ord_9")

	sel.SelectAll([]string{"ord_1", "ord_2", "ord_3"})
	if !equalIDs(sel.IDs(), []string{"ord_1", "ord_2", "ord_3"}) {
		t.Fatalf("ids = %v", sel.IDs())
	}
	if sel.Selected("ord_9") {
		t.Fatal("off-page id should be dropped by select-all")
	}
}

func TestSelectionIsAllSelected(t *testing.T) {
	visible := []string{"ord_1", "ord_2"}

	sel := NewSelectionSet()
	if sel.IsAllSelected(visible) {
		t.Fatal("empty selection is not all-selected")
	}

	sel.Select("ord_1")
	if sel.IsAllSelected(visible) {
		t.Fatal("partial selection is not all-selected")
	}

	sel.Select("ord_2")
	if !sel.IsAllSelected(visible) {
		t.Fatal("exact selection should be all-selected")
	}

	sel.Select("ord_3")
	if sel.IsAllSelected(visible) {
		t.Fatal("superset selection is not all-selected")
	}

	if sel.IsAllSelected(nil) {
		t.Fatal("empty visible set is never all-selected")
	}
}

func TestSelectionIsAllSelectedIgnoresDuplicateVisibleIDs(t *testing.T) {
	sel := NewSelectionSet()
	sel.Select("ord_1")
	sel.Select("ord_2")

	if sel.IsAllSelected([]string{"ord_1", "ord_1"}) {
		t.Fatal("selection holds an id that is not visible")
	}

	if !sel.IsAllSelected([]string{"ord_1", "ord_1", "ord_2"}) {
		t.Fatal("duplicate visible ids should count once")
	}
}

func TestSelectionClear(t *testing.T) {
	sel := NewSelectionSet()
	sel.SelectAll([]string{"ord_1", "ord_2"})

	sel.Clear()
	if sel.Len() != 0 {
		t.Fatalf("len = %d after clear", sel.Len())
	}

	sel.Select("ord_1")
	if !equalIDs(sel.IDs(), []string{"ord_1"}) {
		t.Fatalf("ids = %v", sel.IDs())
	}
}

func TestSelectionRetainKeepsOrder(t *testing.T) {
	sel := NewSelectionSet()
	sel.SelectAll([]string{"ord_1", "ord_2", "ord_3", "ord_4"})

	sel.Retain([]string{"ord_4", "ord_2"})
	if !equalIDs(sel.IDs(), []string{"ord_2", "ord_4"}) {
		t.Fatalf("ids = %v", sel.IDs())
	}
	if sel.Selected("ord_1") || sel.Selected("ord_3") {
		t.Fatal("retained ids only")
	}
}

func TestSelectionIDsReturnsSnapshot(t *testing.T) {
	sel := NewSelectionSet()
	sel.SelectAll([]string{"ord_1", "ord_2"})

	snapshot := sel.IDs()
	sel.Clear()
	if !equalIDs(snapshot, []string{"ord_1", "ord_2"}) {
		t.Fatalf("snapshot mutated: %v", snapshot)
	}
}
