package transcode

import (
	"fmt"
	"os"
	"time"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// MP3Duration decodes an MP3 file's headers and returns its play length.
// Used for post-conversion logging and trim verification.
func MP3Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, fmt.Errorf("decode mp3: %w", err)
	}

	// Length is decoded PCM bytes: 2 channels x 2 bytes per sample
	samples := dec.Length() / 4
	if dec.SampleRate() <= 0 {
		return 0, fmt.Errorf("decode mp3: invalid sample rate")
	}
	seconds := float64(samples) / float64(dec.SampleRate())
	return time.Duration(seconds * float64(time.Second)), nil
}
