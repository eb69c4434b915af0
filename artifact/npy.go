// Package artifact reads and writes the files a preparation run leaves on
// disk: feature and label arrays, frame-count indexes, statistics, stage
// markers and manifests.
package artifact

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// create opens path for writing, creating parent directories.
func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func writeNpy(path string, v interface{}) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	if err := npyio.Write(f, v); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

func readNpy(path string, ptr interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return errors.Wrapf(npyio.Read(f, ptr), "read %s", path)
}

// WriteMatrix writes a frames x dim feature matrix as a 2-D .npy array.
func WriteMatrix(path string, m *mat.Dense) error {
	return writeNpy(path, m)
}

// ReadMatrix reads a 2-D .npy array written by WriteMatrix.
func ReadMatrix(path string) (*mat.Dense, error) {
	var m mat.Dense
	if err := readNpy(path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// WriteLabels writes an index sequence as a 1-D int32 .npy array.
func WriteLabels(path string, ids []int) error {
	data := make([]int32, len(ids))
	for i, id := range ids {
		data[i] = int32(id)
	}
	return writeNpy(path, data)
}

// ReadLabels reads an array written by WriteLabels.
func ReadLabels(path string) ([]int, error) {
	var data []int32
	if err := readNpy(path, &data); err != nil {
		return nil, err
	}
	ids := make([]int, len(data))
	for i, v := range data {
		ids[i] = int(v)
	}
	return ids, nil
}

// WriteText writes a raw transcript. Evaluation partitions keep the text
// rather than indices so scoring can use the original words.
func WriteText(path, text string) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SaveStats writes <dir>/<key>_mean.npy and <dir>/<key>_std.npy.
func SaveStats(dir, key string, mean, std []float64) error {
	if err := writeNpy(filepath.Join(dir, key+"_mean.npy"), mean); err != nil {
		return err
	}
	return writeNpy(filepath.Join(dir, key+"_std.npy"), std)
}

// LoadStats reads statistics written by SaveStats.
func LoadStats(dir, key string) (mean, std []float64, err error) {
	if err = readNpy(filepath.Join(dir, key+"_mean.npy"), &mean); err != nil {
		return nil, nil, err
	}
	if err = readNpy(filepath.Join(dir, key+"_std.npy"), &std); err != nil {
		return nil, nil, err
	}
	if len(mean) != len(std) {
		return nil, nil, errors.Errorf("stats %s in %s: mean dim %d, std dim %d", key, dir, len(mean), len(std))
	}
	return mean, std, nil
}
