package graph

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type recorder struct {
	order []string
}

type fakePass struct {
	name          string
	reads, writes []string
	err           error
}

func (f fakePass) Name() string     { return f.name }
func (f fakePass) Reads() []string  { return f.reads }
func (f fakePass) Writes() []string { return f.writes }
func (f fakePass) Execute(_ context.Context, r *recorder) error {
	r.order = append(r.order, f.name)
	return f.err
}

func deferredGraph() *Graph[*recorder] {
	g := New[*recorder]()
	g.Import("gbuffer", "env")
	g.Add(
		fakePass{name: "lighting", reads: []string{"gbuffer", "env"}, writes: []string{"diffuse", "specular"}},
		fakePass{name: "resolve", reads: []string{"diffuse", "specular"}, writes: []string{"scene", "luma"}},
		fakePass{name: "sky", reads: []string{"gbuffer", "scene"}, writes: []string{"scene"}},
		fakePass{name: "post", reads: []string{"scene"}, writes: []string{"output"}},
	)
	return g
}

func TestCompileAndRun(t *testing.T) {
	plan, err := deferredGraph().Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	wantLevels := [][]string{{"lighting"}, {"resolve"}, {"sky"}, {"post"}}
	if !reflect.DeepEqual(plan.Levels, wantLevels) {
		t.Errorf("levels: expected %v, got %v", wantLevels, plan.Levels)
	}
	wantEdge := Edge{From: "sky", To: "post", Attachment: "scene"}
	found := false
	for _, e := range plan.Edges {
		if e == wantEdge {
			found = true
		}
	}
	if !found {
		t.Errorf("post should consume the sky pass's scene, edges: %v", plan.Edges)
	}

	r := &recorder{}
	if err := plan.Run(context.Background(), r); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []string{"lighting", "resolve", "sky", "post"}; !reflect.DeepEqual(r.order, want) {
		t.Errorf("run order: expected %v, got %v", want, r.order)
	}
}

func TestCompileRejectsReadBeforeWrite(t *testing.T) {
	g := New[*recorder]()
	g.Import("gbuffer")
	g.Add(
		fakePass{name: "resolve", reads: []string{"diffuse"}, writes: []string{"scene"}},
		fakePass{name: "lighting", reads: []string{"gbuffer"}, writes: []string{"diffuse"}},
	)
	if _, err := g.Compile(); !errors.Is(err, ErrReadBeforeWrite) {
		t.Fatalf("expected ErrReadBeforeWrite, got %v", err)
	}
}

func TestCompileErrors(t *testing.T) {
	if _, err := New[*recorder]().Compile(); !errors.Is(err, ErrNoPasses) {
		t.Errorf("empty graph: expected ErrNoPasses, got %v", err)
	}

	g := New[*recorder]()
	g.Import("a", "a")
	g.Add(fakePass{name: "p", reads: []string{"a"}})
	if _, err := g.Compile(); !errors.Is(err, ErrDuplicateImport) {
		t.Errorf("expected ErrDuplicateImport, got %v", err)
	}

	g = New[*recorder]()
	g.Add(fakePass{name: "p", writes: []string{"x"}}, fakePass{name: "p", reads: []string{"x"}})
	if _, err := g.Compile(); !errors.Is(err, ErrDuplicatePass) {
		t.Errorf("expected ErrDuplicatePass, got %v", err)
	}
}

func TestIndependentPassesShareLevel(t *testing.T) {
	g := New[*recorder]()
	g.Import("in")
	g.Add(
		fakePass{name: "a", reads: []string{"in"}, writes: []string{"x"}},
		fakePass{name: "b", reads: []string{"in"}, writes: []string{"y"}},
		fakePass{name: "c", reads: []string{"x", "y"}, writes: []string{"z"}},
	)
	plan, err := g.Compile()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"a", "b"}, {"c"}}
	if !reflect.DeepEqual(plan.Levels, want) {
		t.Errorf("levels: expected %v, got %v", want, plan.Levels)
	}
}

func TestRunStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	g := New[*recorder]()
	g.Add(
		fakePass{name: "a", writes: []string{"x"}, err: boom},
		fakePass{name: "b", reads: []string{"x"}},
	)
	plan, err := g.Compile()
	if err != nil {
		t.Fatal(err)
	}
	r := &recorder{}
	if err := plan.Run(context.Background(), r); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if len(r.order) != 1 {
		t.Errorf("expected only the failing pass to run, got %v", r.order)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := plan.Run(ctx, &recorder{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
