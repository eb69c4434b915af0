// Package audio decodes PCM WAV files into float samples.
package audio

import (
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// WAVHeader holds the parsed RIFF/WAV header fields.
type WAVHeader struct {
	SampleRate    uint32
	BitsPerSample uint16
	NumChannels   uint16
	NumSamples    int // per channel
}

// ReadWAV decodes a PCM WAV stream and returns the samples of one channel
// scaled to [-1.0, 1.0]. A negative channel averages all channels.
func ReadWAV(r io.ReadSeeker, channel int) ([]float64, WAVHeader, error) {
	var header WAVHeader
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, header, errors.New("not a valid WAV file")
	}
	if dec.WavAudioFormat != 1 {
		return nil, header, errors.Errorf("unsupported audio format %d (only PCM=1 supported)", dec.WavAudioFormat)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, header, errors.Wrap(err, "read PCM data")
	}
	header.SampleRate = dec.SampleRate
	header.BitsPerSample = dec.BitDepth
	header.NumChannels = dec.NumChans
	if header.NumChannels == 0 {
		return nil, header, errors.New("missing fmt chunk")
	}
	if channel >= int(header.NumChannels) {
		return nil, header, errors.Errorf("channel %d out of range (%d channels)", channel, header.NumChannels)
	}
	samples := pick(buf, int(header.NumChannels), int(header.BitsPerSample), channel)
	header.NumSamples = len(samples)
	return samples, header, nil
}

// ReadWAVFile is a convenience wrapper that opens a file path.
func ReadWAVFile(path string, channel int) ([]float64, WAVHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WAVHeader{}, err
	}
	defer f.Close()
	samples, h, err := ReadWAV(f, channel)
	if err != nil {
		return nil, h, errors.Wrap(err, path)
	}
	return samples, h, nil
}

func pick(buf *audio.IntBuffer, chans, bits, channel int) []float64 {
	scale := math.Pow(2, float64(bits-1))
	n := len(buf.Data) / chans
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		frame := buf.Data[i*chans : (i+1)*chans]
		if channel >= 0 {
			out[i] = float64(frame[channel]) / scale
			continue
		}
		var sum float64
		for _, v := range frame {
			sum += float64(v)
		}
		out[i] = sum / float64(chans) / scale
	}
	return out
}
