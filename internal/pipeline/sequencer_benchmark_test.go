package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/dunamismax/imgbox/internal/backend"
)

func BenchmarkSequencerResize(b *testing.B) {
	benchmarkSequence(b, []string{"--resize", "max", "640", "out.jpg"})
}

func BenchmarkSequencerEnlarge(b *testing.B) {
	benchmarkSequence(b, []string{"--enlarge", "1:1", "20", "out.png"})
}

func benchmarkSequence(b *testing.B, args []string) {
	source := buildTestPNG(b, 1920, 1080)
	seq := NewSequencer(backend.Imaging{}, staticFetcher{data: source}, discardEmitter{})

	req := Request{Input: "ignored.png", Args: args}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req.RunID = fmt.Sprintf("bench-%d", i)
		if _, err := seq.Run(context.Background(), req); err != nil {
			b.Fatalf("run: %v", err)
		}
	}
}

type staticFetcher struct {
	data []byte
}

func (staticFetcher) Exists(context.Context, string) (bool, error) {
	return true, nil
}

func (f staticFetcher) Fetch(context.Context, string) ([]byte, error) {
	return f.data, nil
}

type discardEmitter struct{}

func (discardEmitter) Emit(_ context.Context, _ Request, target string, _ []byte, _ string) (string, error) {
	return target, nil
}
