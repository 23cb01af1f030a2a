package engine_test

import (
	"testing"

	"github.com/vsariola/clipseq/engine"
)

func TestTrySend(t *testing.T) {
	c := make(chan int, 1)
	if !engine.TrySend(c, 1) {
		t.Fatal("sending to an empty buffer should succeed")
	}
	if engine.TrySend(c, 2) {
		t.Fatal("sending to a full buffer should fail without blocking")
	}
	if v := <-c; v != 1 {
		t.Errorf("got %v, want 1", v)
	}
}
