package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"testing"

	"github.com/guttosm/tradesapi/internal/domain/models"
	"github.com/guttosm/tradesapi/internal/service"
	"github.com/guttosm/tradesapi/internal/storage"
)

type fakeCreator struct {
	calls  int
	inputs []models.TradeInput
	err    error
}

func (f *fakeCreator) CreateMany(_ context.Context, inputs []models.TradeInput) ([]models.Trade, error) {
	f.calls++
	f.inputs = append(f.inputs, inputs...)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Trade, len(inputs))
	for i, in := range inputs {
		out[i] = in.WithID(int64(i + 1))
	}
	return out, nil
}

func TestProcessDirectory_OrderAndSingleBatch(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "b.csv", validHeader+"buy;1;BBB;10;1\nbuy;1;BBB;11;1\n")
	writeTempFile(t, dir, "a.csv", validHeader+"sell;2;AAA;12;2\n")
	writeTempFile(t, dir, "notes.txt", "ignored")

	fc := &fakeCreator{}
	n, err := ProcessDirectory(context.Background(), dir, fc, 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n != 3 || fc.calls != 1 {
		t.Fatalf("created=%d calls=%d", n, fc.calls)
	}
	got := []int{fc.inputs[0].Shares, fc.inputs[1].Shares, fc.inputs[2].Shares}
	if got[0] != 12 || got[1] != 10 || got[2] != 11 {
		t.Fatalf("rows not in file-name order: %v", got)
	}
}

func TestProcessDirectory_Errors(t *testing.T) {
	cases := []struct {
		name  string
		files map[string]string
		svc   *fakeCreator
		check func(t *testing.T, err error, fc *fakeCreator)
	}{
		{
			name:  "empty dir",
			files: nil,
			svc:   &fakeCreator{},
			check: func(t *testing.T, err error, _ *fakeCreator) {
				if !errors.Is(err, ErrNoFiles) {
					t.Fatalf("expected ErrNoFiles, got %v", err)
				}
			},
		},
		{
			name: "one bad file aborts everything",
			files: map[string]string{
				"a.csv": validHeader + "buy;1;ACME;15;1\n",
				"b.csv": validHeader + "buy;1;ACME;99;1\n",
			},
			svc: &fakeCreator{},
			check: func(t *testing.T, err error, fc *fakeCreator) {
				if !errors.Is(err, service.ErrInvalidTrade) {
					t.Fatalf("expected ErrInvalidTrade, got %v", err)
				}
				if fc.calls != 0 {
					t.Fatalf("nothing should be stored after a bad file")
				}
			},
		},
		{
			name:  "store failure",
			files: map[string]string{"a.csv": validHeader + "buy;1;ACME;15;1\n"},
			svc:   &fakeCreator{err: fmt.Errorf("boom")},
			check: func(t *testing.T, err error, _ *fakeCreator) {
				if err == nil {
					t.Fatalf("expected error from CreateMany")
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tc.files {
				writeTempFile(t, dir, name, content)
			}
			_, err := ProcessDirectory(context.Background(), dir, tc.svc, 0)
			tc.check(t, err, tc.svc)
		})
	}
}

func TestProcessDirectory_WithTradeService(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "01.csv", validHeader+"buy;1;ACME;15;10.5\n")
	writeTempFile(t, dir, "02.csv", validHeader+"sell;u-2;ACME;20;11\n")

	backend := storage.NewMemoryBackend(models.Trade{ID: 5, Type: json.RawMessage(`"buy"`), Symbol: json.RawMessage(`"OLD"`), Shares: 10, Price: json.RawMessage(`1`)})
	svc := service.NewTradeService(storage.NewStore(backend))

	n, err := ProcessDirectory(context.Background(), dir, svc, 4)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n != 2 || backend.Reads != 1 || backend.Writes != 1 {
		t.Fatalf("created=%d reads=%d writes=%d", n, backend.Reads, backend.Writes)
	}
	snap := backend.Snapshot()
	if len(snap) != 3 || snap[1].ID != 6 || snap[2].ID != 7 || string(snap[2].UserID) != `"u-2"` {
		t.Fatalf("unexpected collection %+v", snap)
	}
}

func TestParallelism(t *testing.T) {
	want := runtime.NumCPU()
	if want > maxParallel {
		want = maxParallel
	}
	cases := []struct{ in, want int }{
		{0, want},
		{-1, want},
		{1, 1},
		{3, 3},
		{100, maxParallel},
	}
	for _, c := range cases {
		if got := parallelism(c.in); got != c.want {
			t.Fatalf("parallelism(%d)=%d, want %d", c.in, got, c.want)
		}
	}
}
