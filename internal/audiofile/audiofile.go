// Package audiofile reads and writes WAV files as per-channel float64 slices.
package audiofile

import (
	"fmt"
	"os"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// Read decodes path into one float64 slice per channel.
func Read(path string) ([][]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}

	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}

	numCh := buf.Format.NumChannels
	if buf.Format.SampleRate <= 0 {
		return nil, 0, fmt.Errorf("invalid wav sample-rate: %d", buf.Format.SampleRate)
	}

	frames := len(buf.Data) / numCh
	if frames == 0 {
		return nil, 0, fmt.Errorf("empty wav data: %s", path)
	}

	// engines are at most stereo; extra channels are dropped
	outCh := min(numCh, 2)
	chans := make([][]float64, outCh)

	for c := range chans {
		chans[c] = make([]float64, frames)
		for i := range frames {
			chans[c][i] = float64(buf.Data[i*numCh+c])
		}
	}

	return chans, buf.Format.SampleRate, nil
}

// Write encodes chans as 16-bit PCM.
func Write(path string, sampleRate int, chans [][]float64) error {
	if len(chans) == 0 {
		return fmt.Errorf("no channels to write")
	}

	numCh := len(chans)
	frames := len(chans[0])
	samples := make([]float32, frames*numCh)

	for c, ch := range chans {
		for i, v := range ch[:frames] {
			samples[i*numCh+c] = float32(v)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	encoder := wav.NewEncoder(file, sampleRate, 16, numCh, 1)

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: numCh,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}

	if err := encoder.Write(buf); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := encoder.Close(); err != nil {
		file.Close()
		return fmt.Errorf("finalize %s: %w", path, err)
	}

	return file.Close()
}
