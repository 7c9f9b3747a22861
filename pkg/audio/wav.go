package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// wavHeader holds the fmt-chunk fields we care about.
type wavHeader struct {
	audioFormat   uint16
	numChannels   uint16
	sampleRate    uint32
	bitsPerSample uint16
}

const wavFormatPCM = 1

// ReadWAVFile opens path and decodes it via [ReadWAV].
func ReadWAVFile(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, fmt.Errorf("audio: open %q: %w", path, err)
	}
	defer f.Close()

	buf, err := ReadWAV(f)
	if err != nil {
		return Buffer{}, fmt.Errorf("audio: decode %q: %w", path, err)
	}
	return buf, nil
}

// ReadWAV decodes a RIFF/WAVE stream into a normalized mono [Buffer].
// Supported encodings: 16-bit PCM, mono or stereo (stereo is downmixed).
// Chunks other than fmt and data are skipped.
func ReadWAV(r io.Reader) (Buffer, error) {
	var riff [4]byte
	if err := binary.Read(r, binary.LittleEndian, &riff); err != nil {
		return Buffer{}, fmt.Errorf("read RIFF id: %w", err)
	}
	if string(riff[:]) != "RIFF" {
		return Buffer{}, errors.New("not a RIFF stream")
	}
	var fileSize uint32
	if err := binary.Read(r, binary.LittleEndian, &fileSize); err != nil {
		return Buffer{}, fmt.Errorf("read RIFF size: %w", err)
	}
	var wave [4]byte
	if err := binary.Read(r, binary.LittleEndian, &wave); err != nil {
		return Buffer{}, fmt.Errorf("read WAVE id: %w", err)
	}
	if string(wave[:]) != "WAVE" {
		return Buffer{}, errors.New("not a WAVE stream")
	}

	var (
		hdr      wavHeader
		fmtSeen  bool
		dataSeen bool
		samples  []float64
	)

	for {
		var chunkID [4]byte
		if err := binary.Read(r, binary.LittleEndian, &chunkID); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return Buffer{}, fmt.Errorf("read chunk id: %w", err)
		}
		var chunkSize uint32
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return Buffer{}, fmt.Errorf("read chunk size: %w", err)
		}

		switch string(chunkID[:]) {
		case "fmt ":
			if err := binary.Read(r, binary.LittleEndian, &hdr.audioFormat); err != nil {
				return Buffer{}, fmt.Errorf("read audio format: %w", err)
			}
			if err := binary.Read(r, binary.LittleEndian, &hdr.numChannels); err != nil {
				return Buffer{}, fmt.Errorf("read channel count: %w", err)
			}
			if err := binary.Read(r, binary.LittleEndian, &hdr.sampleRate); err != nil {
				return Buffer{}, fmt.Errorf("read sample rate: %w", err)
			}
			// byte rate + block align, not needed.
			if err := skip(r, 6); err != nil {
				return Buffer{}, err
			}
			if err := binary.Read(r, binary.LittleEndian, &hdr.bitsPerSample); err != nil {
				return Buffer{}, fmt.Errorf("read bits per sample: %w", err)
			}
			if rest := int64(chunkSize) - 16; rest > 0 {
				if err := skip(r, rest); err != nil {
					return Buffer{}, err
				}
			}
			fmtSeen = true

		case "data":
			if !fmtSeen {
				return Buffer{}, errors.New("data chunk before fmt chunk")
			}
			if hdr.audioFormat != wavFormatPCM || hdr.bitsPerSample != 16 {
				return Buffer{}, fmt.Errorf("unsupported encoding: format=%d bits=%d (want 16-bit PCM)", hdr.audioFormat, hdr.bitsPerSample)
			}
			n := int(chunkSize) / 2
			raw := make([]int16, n)
			if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
				return Buffer{}, fmt.Errorf("read sample data: %w", err)
			}
			samples = make([]float64, n)
			for i, v := range raw {
				samples[i] = float64(v) / 32768.0
			}
			dataSeen = true

		default:
			// Odd-sized chunks carry a pad byte.
			size := int64(chunkSize)
			if size%2 == 1 {
				size++
			}
			if err := skip(r, size); err != nil {
				return Buffer{}, err
			}
		}
	}

	if !dataSeen {
		return Buffer{}, errors.New("no data chunk found")
	}

	switch hdr.numChannels {
	case 1:
		// already mono
	case 2:
		samples = StereoToMono(samples)
	default:
		return Buffer{}, fmt.Errorf("unsupported channel count %d", hdr.numChannels)
	}

	return Buffer{Samples: samples, SampleRate: int(hdr.sampleRate)}, nil
}

func skip(r io.Reader, n int64) error {
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		return fmt.Errorf("skip %d bytes: %w", n, err)
	}
	return nil
}
