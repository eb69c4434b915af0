package artifact

import (
	"path/filepath"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMatrixRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inputs", "train", "A01", "A01_00001.npy")
	want := mat.NewDense(2, 3, []float64{1, 2, 3, -4, 5.5, 6})
	if err := WriteMatrix(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := ReadMatrix(path)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(got, want) {
		t.Errorf("got %v", mat.Formatted(got))
	}
}

func TestLabelsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "l.npy")
	want := []int{0, 5, 3, 12, 0}
	if err := WriteLabels(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := ReadLabels(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestStatsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	mean, std := []float64{1, 2}, []float64{0.5, 3}
	if err := SaveStats(dir, "female", mean, std); err != nil {
		t.Fatal(err)
	}
	gotMean, gotStd, err := LoadStats(dir, "female")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gotMean, mean) || !reflect.DeepEqual(gotStd, std) {
		t.Errorf("got %v %v", gotMean, gotStd)
	}
	if _, _, err := LoadStats(dir, "male"); err == nil {
		t.Error("expected error for missing stats")
	}
}

func TestFrameIndexRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FrameIndexFile)
	want := map[string]int{"A01_00000": 120, "A01_00001": 87, "S02_00000": 4000}
	if err := WriteFrameIndex(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFrameIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestStage(t *testing.T) {
	s := Stage{Dir: filepath.Join(t.TempDir(), "labels", "kana", "train")}
	if s.Done() {
		t.Fatal("fresh stage reported done")
	}
	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	if err := WriteText(filepath.Join(s.Dir, "partial.txt"), "x"); err != nil {
		t.Fatal(err)
	}
	m := &Manifest{RunID: NewRunID(), Corpus: "csj", Stage: "labels", Partition: "train", Label: "kana", Utterances: 3, OOVRate: 1.5}
	if err := s.Finish(m); err != nil {
		t.Fatal(err)
	}
	if !s.Done() {
		t.Fatal("finished stage not done")
	}
	got, err := LoadManifest(filepath.Join(s.Dir, ManifestFile))
	if err != nil {
		t.Fatal(err)
	}
	if got.RunID != m.RunID || got.Utterances != 3 || got.OOVRate != 1.5 || got.Finished.IsZero() {
		t.Errorf("manifest = %+v", got)
	}

	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	if s.Done() {
		t.Error("reset stage still done")
	}
}
