package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/klauspost/compress/zstd"
	"github.com/mewkiz/flac"
)

// FormatKind selects the payload decoder for a dataset.
type FormatKind int

const (
	FormatUnknown FormatKind = iota
	FormatCSV
	FormatTensor
	FormatWAV
	FormatFLAC
	FormatOGG
	FormatMP3
)

var formatNames = map[FormatKind]string{
	FormatCSV:    "csv",
	FormatTensor: "tensor",
	FormatWAV:    "wav",
	FormatFLAC:   "flac",
	FormatOGG:    "ogg",
	FormatMP3:    "mp3",
}

var formatExts = map[string]FormatKind{
	".csv":  FormatCSV,
	".npy":  FormatTensor,
	".wav":  FormatWAV,
	".flac": FormatFLAC,
	".ogg":  FormatOGG,
	".mp3":  FormatMP3,
}

func (k FormatKind) String() string {
	if s, ok := formatNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseFormat maps a declared format name to its kind.
func ParseFormat(s string) FormatKind {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "npy" {
		return FormatTensor
	}
	for k, name := range formatNames {
		if name == s {
			return k
		}
	}
	return FormatUnknown
}

// FormatFromPath detects the format by extension. A trailing ".zst" is
// ignored and reported through compressed.
func FormatFromPath(path string) (kind FormatKind, compressed bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".zst" {
		compressed = true
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}
	return formatExts[ext], compressed
}

// SupportedExtsList returns a human-readable list of dataset extensions.
func SupportedExtsList() string {
	return ".csv, .npy, .wav, .flac, .ogg, .mp3 (optionally .zst compressed)"
}

// FormatError reports a payload whose declared format is not recognized.
type FormatError struct {
	Format string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized or unsupported format type: %s", e.Format)
}

// Open reads and decodes the dataset file at path. When info.Format is
// unset it is detected from the extension.
func Open(path string, info Info) (*Dataset, error) {
	kind, compressed := FormatFromPath(path)
	if info.Format == FormatUnknown {
		info.Format = kind
	}
	if info.Path == "" {
		info.Path = path
	}
	if info.Name == "" {
		base := filepath.Base(path)
		if compressed {
			base = strings.TrimSuffix(base, filepath.Ext(base))
		}
		info.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if info.Format == FormatUnknown {
		return nil, &FormatError{Format: filepath.Ext(path)}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	return Decode(r, info)
}

// Decode builds a dataset from a payload. The decoder is chosen once from
// info.Format; nothing downstream branches on format again.
func Decode(r io.Reader, info Info) (*Dataset, error) {
	var decode func(io.Reader, *Info) ([]Channel, error)
	switch info.Format {
	case FormatCSV:
		decode = decodeCSV
	case FormatTensor:
		decode = decodeNPY
	case FormatWAV:
		decode = decodeWAV
	case FormatFLAC:
		decode = decodeFLAC
	case FormatOGG:
		decode = decodeOGG
	case FormatMP3:
		decode = decodeMP3
	default:
		return nil, &FormatError{Format: info.Format.String()}
	}

	channels, err := decode(r, &info)
	if err != nil {
		return nil, fmt.Errorf("decoding %s dataset %q: %w", info.Format, info.Name, err)
	}
	for i := range channels {
		if channels[i].Name == "" {
			channels[i].Name = strconv.Itoa(i)
		}
		if len(channels[i].Samples) != len(channels[0].Samples) {
			return nil, fmt.Errorf("decoding %s dataset %q: channel %d has %d samples, want %d",
				info.Format, info.Name, i, len(channels[i].Samples), len(channels[0].Samples))
		}
	}
	return New(channels, info), nil
}

// --- CSV ---

func decodeCSV(r io.Reader, _ *Info) ([]Channel, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var channels []Channel
	row := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row++
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if channels == nil {
			channels = make([]Channel, len(rec))
			if !numericRow(rec) {
				for i, name := range rec {
					channels[i].Name = strings.TrimSpace(name)
				}
				continue
			}
		}
		if len(rec) != len(channels) {
			return nil, fmt.Errorf("row %d has %d fields, want %d", row, len(rec), len(channels))
		}
		for i, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", row, i, err)
			}
			channels[i].Samples = append(channels[i].Samples, v)
		}
	}
	return channels, nil
}

func numericRow(rec []string) bool {
	for _, field := range rec {
		if _, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err != nil {
			return false
		}
	}
	return true
}

// --- WAV ---

func decodeWAV(r io.Reader, info *Info) ([]Channel, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	if info.Hz == 0 {
		info.Hz = float64(dec.SampleRate)
	}
	chans := int(dec.NumChans)
	if chans < 1 {
		return nil, fmt.Errorf("WAV file has no channels")
	}
	channels := make([]Channel, chans)
	frames := len(buf.Data) / chans
	for c := range channels {
		channels[c].Samples = make([]float64, frames)
	}
	for i := range frames {
		for c := range chans {
			channels[c].Samples[i] = float64(buf.Data[i*chans+c])
		}
	}
	return channels, nil
}

// --- FLAC ---

func decodeFLAC(r io.Reader, info *Info) ([]Channel, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if info.Hz == 0 {
		info.Hz = float64(stream.Info.SampleRate)
	}
	channels := make([]Channel, int(stream.Info.NChannels))
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for c := range channels {
			for _, s := range frame.Subframes[c].Samples {
				channels[c].Samples = append(channels[c].Samples, float64(s))
			}
		}
	}
	return channels, nil
}

// --- OGG ---

func decodeOGG(r io.Reader, info *Info) ([]Channel, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if info.Hz == 0 {
		info.Hz = float64(format.SampleRate)
	}
	return deinterleave(len(samples), format.Channels, func(i int) float64 {
		return float64(samples[i])
	}), nil
}

// --- MP3 ---

func decodeMP3(r io.Reader, info *Info) ([]Channel, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if tag, err := id3v2.ParseReader(bytes.NewReader(data), id3v2.Options{Parse: true}); err == nil {
		if title := strings.TrimSpace(tag.Title()); title != "" && info.Title == "" {
			info.Title = title
		}
	}

	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if info.Hz == 0 {
		info.Hz = float64(dec.SampleRate())
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("reading MP3 PCM data: %w", err)
	}
	// go-mp3 always yields 16-bit little-endian stereo.
	return deinterleave(len(pcm)/2, 2, func(i int) float64 {
		return float64(int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8))
	}), nil
}

func deinterleave(n, chans int, at func(int) float64) []Channel {
	if chans < 1 {
		return nil
	}
	frames := n / chans
	channels := make([]Channel, chans)
	for c := range channels {
		channels[c].Samples = make([]float64, frames)
	}
	for i := range frames {
		for c := range chans {
			channels[c].Samples[i] = at(i*chans + c)
		}
	}
	return channels
}
