package app

import "testing"

func TestCursorClampsAtBounds(t *testing.T) {
	c := NewCursor(3)
	if c.Previous() {
		t.Fatalf("previous on the first question must not move")
	}
	if !c.Next() || !c.Next() {
		t.Fatalf("expected to reach the last question")
	}
	if c.Next() {
		t.Fatalf("next on the last question must not move")
	}
	if c.Index() != 2 {
		t.Fatalf("expected index 2, got %d", c.Index())
	}
	if !c.Previous() || c.Index() != 1 {
		t.Fatalf("expected to move back to 1, got %d", c.Index())
	}
}

func TestCursorSingleQuestion(t *testing.T) {
	c := NewCursor(1)
	if c.Next() || c.Previous() || c.Index() != 0 {
		t.Fatalf("single question cursor must stay at 0")
	}
}

func TestCursorFreeze(t *testing.T) {
	c := NewCursor(3)
	c.Next()
	c.Freeze()
	if c.Next() || c.Previous() || c.Index() != 1 {
		t.Fatalf("frozen cursor moved to %d", c.Index())
	}
}
