package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectSource(t *testing.T) {
	tests := []struct {
		input string
		want  SourceType
	}{
		{"https://arxiv.org/abs/2404.01234", SourceURL},
		{"http://example.com/paper", SourceURL},
		{"paper.pdf", SourcePDF},
		{"/data/Paper.PDF", SourcePDF},
		{"notes.txt", SourceText},
		{"README", SourceText},
	}

	for _, tt := range tests {
		if got := DetectSource(tt.input); got != tt.want {
			t.Errorf("DetectSource(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTextIngester(t *testing.T) {
	content := "Scalable WCC in Chapel\n\nWe present a distributed implementation of weakly connected components."
	path := filepath.Join(t.TempDir(), "paper.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	paper, err := NewIngester(path).Ingest(context.Background(), path)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if paper.Title != "Scalable WCC in Chapel" {
		t.Errorf("Title = %q", paper.Title)
	}
	if paper.WordCount != wordCount(content) {
		t.Errorf("WordCount = %d", paper.WordCount)
	}
	if !strings.Contains(paper.Text, "weakly connected components") {
		t.Errorf("text missing body: %q", paper.Text)
	}
}

func TestTextIngester_MissingFile(t *testing.T) {
	_, err := NewIngester("nope.txt").Ingest(context.Background(), "nope.txt")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"one", 1},
		{"  spaced   out  words ", 3},
		{"line\nbreaks\tand tabs", 4},
	}
	for _, tt := range tests {
		if got := wordCount(tt.in); got != tt.want {
			t.Errorf("wordCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTitleFromText(t *testing.T) {
	if got := titleFromText("A Title\nbody", 80); got != "A Title" {
		t.Errorf("titleFromText = %q", got)
	}
	if got := titleFromText("", 80); got != "Untitled" {
		t.Errorf("empty text title = %q", got)
	}
	long := strings.Repeat("x", 100)
	if got := titleFromText(long, 20); len(got) != 23 {
		t.Errorf("long title not truncated: %q", got)
	}
}
