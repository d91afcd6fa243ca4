package cron

import (
	"context"
	"testing"
)

type namedJob struct {
	name string
	runs int
	err  error
}

func (j *namedJob) Name() string { return j.name }

func (j *namedJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestRegistryPreservesOrderAndSkipsNil(t *testing.T) {
	a := &namedJob{name: "a"}
	b := &namedJob{name: "b"}
	registry := NewRegistry(a, nil, b)
	registry.Register(nil)
	registry.Register(&namedJob{name: "c"})

	jobs := registry.Jobs()
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if jobs[i].Name() != want {
			t.Fatalf("expected job %q at %d, got %q", want, i, jobs[i].Name())
		}
	}
}

func TestRegistryJobsIsACopy(t *testing.T) {
	registry := NewRegistry(&namedJob{name: "a"})
	jobs := registry.Jobs()
	jobs[0] = &namedJob{name: "mutated"}
	if registry.Jobs()[0].Name() != "a" {
		t.Fatal("mutating the returned slice must not affect the registry")
	}
}
