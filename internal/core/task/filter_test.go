package task

import "testing"

func TestCompletedAndIncompletePartition(t *testing.T) {
	t.Parallel()

	tasks := []*Task{
		New(NewInput{Assignee: "a", Completed: true}, nil),
		New(NewInput{Assignee: "b"}, nil),
		New(NewInput{Assignee: "c", Completed: true}, nil),
		New(NewInput{Assignee: "d"}, nil),
		New(NewInput{Assignee: "e"}, nil),
	}

	done := Completed(tasks)
	open := Incomplete(tasks)

	if len(done)+len(open) != len(tasks) {
		t.Fatalf("partition size mismatch: %d + %d != %d", len(done), len(open), len(tasks))
	}

	seen := make(map[*Task]int)
	for _, x := range done {
		if !x.Completed {
			t.Fatalf("incomplete task %s in completed set", x.Assignee)
		}
		seen[x]++
	}
	for _, x := range open {
		if x.Completed {
			t.Fatalf("completed task %s in incomplete set", x.Assignee)
		}
		seen[x]++
	}
	for _, x := range tasks {
		if seen[x] != 1 {
			t.Fatalf("task %s appears %d times", x.Assignee, seen[x])
		}
	}

	if done[0].Assignee != "a" || done[1].Assignee != "c" {
		t.Fatalf("completed order not preserved")
	}
	if open[0].Assignee != "b" || open[1].Assignee != "d" || open[2].Assignee != "e" {
		t.Fatalf("incomplete order not preserved")
	}
}

func TestFilters_Empty(t *testing.T) {
	t.Parallel()

	if got := Completed(nil); len(got) != 0 {
		t.Fatalf("expected empty, got %d", len(got))
	}
	if got := Incomplete(nil); len(got) != 0 {
		t.Fatalf("expected empty, got %d", len(got))
	}
}
