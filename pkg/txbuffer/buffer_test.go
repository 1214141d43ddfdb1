package txbuffer

import "testing"

func TestFlushRunsTasksInOrderAfterCommit(t *testing.T) {
	buf := New(nil)

	var ran []int
	for i := 1; i <= 3; i++ {
		i := i
		if err := buf.Add(func() { ran = append(ran, i) }); err != nil {
			t.Fatalf("Add error: %v", err)
		}
	}

	buf.Commit()
	buf.Flush()

	if len(ran) != 3 || ran[0] != 1 || ran[1] != 2 || ran[2] != 3 {
		t.Fatalf("expected tasks to run in order, got %v", ran)
	}
}

func TestFlushWithoutCommitRunsNothing(t *testing.T) {
	buf := New(nil)

	ran := false
	if err := buf.Add(func() { ran = true }); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	buf.Flush()

	if ran {
		t.Fatal("task ran despite missing commit")
	}
}

func TestFlushIsIdempotent(t *testing.T) {
	buf := New(nil)

	count := 0
	if err := buf.Add(func() { count++ }); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	buf.Commit()
	buf.Flush()
	buf.Flush()

	if count != 1 {
		t.Fatalf("expected task to run once, ran %d times", count)
	}
}

func TestPanickingTaskDoesNotBlockOthers(t *testing.T) {
	buf := New(nil)

	ran := false
	if err := buf.Add(func() { panic("broken notification") }); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if err := buf.Add(func() { ran = true }); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	buf.Commit()
	buf.Flush()

	if !ran {
		t.Fatal("second task should run even when the first panics")
	}
}

func TestAddAfterFlushRejected(t *testing.T) {
	buf := New(nil)
	if err := buf.Add(func() {}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	buf.Commit()
	buf.Flush()

	if err := buf.Add(func() {}); err == nil {
		t.Fatal("expected Add after flush to fail")
	}
}

func TestAddBetweenCommitAndFlushAllowed(t *testing.T) {
	buf := New(nil)
	buf.Commit()

	ran := false
	if err := buf.Add(func() { ran = true }); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	buf.Flush()

	if !ran {
		t.Fatal("task added after commit should run on flush")
	}
}
