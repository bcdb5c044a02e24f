// Package tags reads and writes ID3v2 metadata and cover art on audio files.
package tags

import (
	"errors"
	"strings"

	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/gabriel-vasile/mimetype"
)

// Tags holds the editable subset of an audio file's ID3v2 frames.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Year   string
	Track  string
}

// ErrNoArtwork is returned when a file carries no attached picture frame.
var ErrNoArtwork = errors.New("no artwork present")

const trackFrameID = "TRCK"

// Read extracts tags from the file at path. A file without an ID3 header
// yields zero-valued Tags, not an error.
func Read(path string) (Tags, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Tags{}, err
	}
	defer tag.Close()

	return Tags{
		Title:  tag.Title(),
		Artist: tag.Artist(),
		Album:  tag.Album(),
		Genre:  tag.Genre(),
		Year:   tag.Year(),
		Track:  tag.GetTextFrame(trackFrameID).Text,
	}, nil
}

// Write sets the non-empty fields of t on the file at path, leaving the
// other frames untouched.
func Write(path string, t Tags) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	if t.Title != "" {
		tag.SetTitle(t.Title)
	}
	if t.Artist != "" {
		tag.SetArtist(t.Artist)
	}
	if t.Album != "" {
		tag.SetAlbum(t.Album)
	}
	if t.Genre != "" {
		tag.SetGenre(t.Genre)
	}
	if t.Year != "" {
		tag.SetYear(t.Year)
	}
	if t.Track != "" {
		tag.AddTextFrame(trackFrameID, tag.DefaultEncoding(), t.Track)
	}

	return tag.Save()
}

// ReadArtwork returns the front-cover image bytes and their MIME type.
func ReadArtwork(path string) ([]byte, string, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, "", err
	}
	defer tag.Close()

	for _, frame := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pic, ok := frame.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		return pic.Picture, pic.MimeType, nil
	}
	return nil, "", ErrNoArtwork
}

// WriteArtwork replaces any existing cover art with data. The MIME type is
// sniffed from the image bytes.
func WriteArtwork(path string, data []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	frameID := tag.CommonID("Attached picture")
	tag.DeleteFrames(frameID)
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    mimetype.Detect(data).String(),
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     data,
	})

	return tag.Save()
}

// DeleteArtwork removes every attached picture frame from the file.
func DeleteArtwork(path string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.DeleteFrames(tag.CommonID("Attached picture"))
	return tag.Save()
}

// artistTitleSeparators in match order. The em-dash convention is the most
// specific and must win over the plain hyphen.
var artistTitleSeparators = []string{" — ", " - ", " – ", " | "}

// ParseArtistTitle splits a raw "Artist <sep> Title" string. ok is false
// when no known separator is present.
func ParseArtistTitle(raw string) (artist, title string, ok bool) {
	for _, sep := range artistTitleSeparators {
		if idx := strings.Index(raw, sep); idx > 0 {
			artist = strings.TrimSpace(raw[:idx])
			title = strings.TrimSpace(raw[idx+len(sep):])
			if artist != "" && title != "" {
				return artist, title, true
			}
		}
	}
	return "", "", false
}
