// Package audiometa reads header and tag metadata from uploaded audio
// files. It never decodes audio; everything here is container metadata.
package audiometa

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
)

// Info is the metadata probed from an audio file. All fields are
// optional; a probe that finds nothing returns the zero Info.
type Info struct {
	Duration   *float64
	SampleRate *int
	Channels   *int
	Title      *string
	Artist     *string
}

// Probe reads whatever metadata the file's format exposes. Probing is
// best-effort: unreadable or unrecognized files yield an empty Info,
// never an error, so a bad tag cannot block an upload.
func Probe(path string) Info {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return probeWAV(path)
	case ".flac":
		return probeFLAC(path)
	case ".mp3":
		return probeMP3(path)
	}
	return Info{}
}

func probeFLAC(path string) Info {
	var info Info

	f, err := flac.ParseFile(path)
	if err != nil {
		return info
	}

	if si, err := f.GetStreamInfo(); err == nil {
		rate := si.SampleRate
		channels := si.ChannelCount
		info.SampleRate = &rate
		info.Channels = &channels
		if si.SampleRate > 0 {
			duration := float64(si.SampleCount) / float64(si.SampleRate)
			info.Duration = &duration
		}
	}

	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			continue
		}
		cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			continue
		}
		if titles, err := cmt.Get(flacvorbis.FIELD_TITLE); err == nil && len(titles) > 0 {
			title := titles[0]
			info.Title = &title
		}
		if artists, err := cmt.Get(flacvorbis.FIELD_ARTIST); err == nil && len(artists) > 0 {
			artist := artists[0]
			info.Artist = &artist
		}
	}

	return info
}

func probeMP3(path string) Info {
	var info Info

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return info
	}
	defer tag.Close()

	if title := strings.TrimSpace(tag.Title()); title != "" {
		info.Title = &title
	}
	if artist := strings.TrimSpace(tag.Artist()); artist != "" {
		info.Artist = &artist
	}

	// MP3 duration needs frame walking; left unset, same as the other
	// optional fields.
	return info
}
