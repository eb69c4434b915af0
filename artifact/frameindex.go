package artifact

import (
	"bufio"
	"os"

	ogórek "github.com/kisielk/og-rek"
	"github.com/pkg/errors"
)

// FrameIndexFile is the per-partition frame-count index name.
const FrameIndexFile = "frame_num.pickle"

// WriteFrameIndex pickles utterance ID -> frame count as a Python dict.
func WriteFrameIndex(path string, frames map[string]int) error {
	dict := make(map[interface{}]interface{}, len(frames))
	for id, n := range frames {
		dict[id] = int64(n)
	}
	f, err := create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	enc := ogórek.NewEncoderWithConfig(w, &ogórek.EncoderConfig{Protocol: 2})
	if err := enc.Encode(dict); err != nil {
		f.Close()
		return errors.Wrapf(err, "pickle %s", path)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFrameIndex reads an index written by WriteFrameIndex.
func ReadFrameIndex(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	v, err := ogórek.NewDecoder(bufio.NewReader(f)).Decode()
	if err != nil {
		return nil, errors.Wrapf(err, "unpickle %s", path)
	}
	dict, ok := v.(map[interface{}]interface{})
	if !ok {
		return nil, errors.Errorf("%s: pickle holds %T, want dict", path, v)
	}
	out := make(map[string]int, len(dict))
	for k, v := range dict {
		id, ok := k.(string)
		if !ok {
			return nil, errors.Errorf("%s: key %v is %T", path, k, k)
		}
		n, ok := v.(int64)
		if !ok {
			return nil, errors.Errorf("%s: value for %s is %T", path, id, v)
		}
		out[id] = int(n)
	}
	return out, nil
}
