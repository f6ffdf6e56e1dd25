package audiometa

import (
	"encoding/binary"
	"io"
	"os"
)

// probeWAV walks the RIFF chunk list for the fmt and data chunks.
// WAV layout:
//
//	[4] "RIFF"  [4] file size  [4] "WAVE"
//	For each chunk:
//	  [4] chunk id  [4] little-endian chunk size  [N] chunk data
func probeWAV(path string) Info {
	var info Info

	f, err := os.Open(path)
	if err != nil {
		return info
	}
	defer f.Close()

	var header [12]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return info
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return info
	}

	var byteRate uint32
	var dataSize uint32

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(f, chunk[:]); err != nil {
			break
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			var fmtData [16]byte
			if size < 16 {
				return info
			}
			if _, err := io.ReadFull(f, fmtData[:]); err != nil {
				return info
			}
			channels := int(binary.LittleEndian.Uint16(fmtData[2:4]))
			rate := int(binary.LittleEndian.Uint32(fmtData[4:8]))
			byteRate = binary.LittleEndian.Uint32(fmtData[8:12])
			info.Channels = &channels
			info.SampleRate = &rate
			if skip := int64(size) - 16; skip > 0 {
				if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
					return info
				}
			}
		case "data":
			dataSize = size
			if _, err := f.Seek(int64(size), io.SeekCurrent); err != nil {
				return info
			}
		default:
			// Chunks are word-aligned; odd sizes carry a pad byte.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
				return info
			}
		}

		if byteRate > 0 && dataSize > 0 {
			break
		}
	}

	if byteRate > 0 && dataSize > 0 {
		duration := float64(dataSize) / float64(byteRate)
		info.Duration = &duration
	}

	return info
}
