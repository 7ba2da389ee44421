package resources

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// Media is one Property photo, reshaped from the backend's photo XML blob
// per spec.md §4.5 step 5.
type Media struct {
	MediaKey          string `json:"MediaKey"`
	ResourceRecordKey string `json:"ResourceRecordKey"`
	MediaURL          string `json:"MediaURL"`
	Order             int    `json:"Order"`
}

var urlTagPattern = regexp.MustCompile(`<URL>(.*?)</URL>`)

// ParsePhotoXML extracts <URL>…</URL> occurrences in document order into a
// Media array. encodedListingKey becomes ResourceRecordKey on every entry.
// Absent/empty input yields an empty slice, never nil-vs-empty ambiguity
// beyond what json.Marshal does with a nil slice.
func ParsePhotoXML(xml string, encodedListingKey string) []Media {
	matches := urlTagPattern.FindAllStringSubmatch(xml, -1)
	media := make([]Media, 0, len(matches))
	for i, m := range matches {
		url := m[1]
		sum := sha256.Sum256([]byte(url))
		mediaKey := hex.EncodeToString(sum[:])[:16]
		media = append(media, Media{
			MediaKey:          mediaKey,
			ResourceRecordKey: encodedListingKey,
			MediaURL:          url,
			Order:             i + 1,
		})
	}
	return media
}
