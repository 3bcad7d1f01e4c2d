package hashing

import (
	"context"
	"math"
	"testing"
)

func TestEmbedDimension(t *testing.T) {
	e := NewEmbedder(0)
	if e.Dimension() != DefaultDimension {
		t.Fatalf("Dimension() = %d, want %d", e.Dimension(), DefaultDimension)
	}
	vec, err := e.Embed(context.Background(), "data protection compliance")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != DefaultDimension {
		t.Fatalf("len(vec) = %d, want %d", len(vec), DefaultDimension)
	}
}

func TestEmbedDeterministic(t *testing.T) {
	e := NewEmbedder(64)
	a, err := e.Embed(context.Background(), "consent must be informed and specific")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(context.Background(), "consent must be informed and specific")
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestEmbedNormalized(t *testing.T) {
	e := NewEmbedder(64)
	vec, err := e.Embed(context.Background(), "processing of personal data requires notice")
	if err != nil {
		t.Fatal(err)
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Fatalf("vector norm = %v, want 1.0", math.Sqrt(norm))
	}
}

func TestEmbedEmptyText(t *testing.T) {
	e := NewEmbedder(64)
	for _, text := range []string{"", "   ", "the and of"} {
		vec, err := e.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("Embed(%q): %v", text, err)
		}
		for i, v := range vec {
			if v != 0 {
				t.Fatalf("Embed(%q)[%d] = %v, want zero vector", text, i, v)
			}
		}
	}
}
