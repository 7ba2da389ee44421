package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePhotoXML(t *testing.T) {
	t.Run("should extract URLs in document order with 1-based Order", func(t *testing.T) {
		xml := "<Photos><Photo><URL>https://example.com/a.jpg</URL></Photo>" +
			"<Photo><URL>https://example.com/b.jpg</URL></Photo></Photos>"

		media := ParsePhotoXML(xml, "12345")
		assert.Len(t, media, 2)
		assert.Equal(t, "https://example.com/a.jpg", media[0].MediaURL)
		assert.Equal(t, 1, media[0].Order)
		assert.Equal(t, "https://example.com/b.jpg", media[1].MediaURL)
		assert.Equal(t, 2, media[1].Order)
	})

	t.Run("should stamp every entry with the encoded listing key", func(t *testing.T) {
		xml := "<URL>https://example.com/a.jpg</URL>"
		media := ParsePhotoXML(xml, "99999")
		assert.Equal(t, "99999", media[0].ResourceRecordKey)
	})

	t.Run("should derive a stable 16-character MediaKey from the URL", func(t *testing.T) {
		xml := "<URL>https://example.com/a.jpg</URL>"
		media := ParsePhotoXML(xml, "1")
		assert.Len(t, media[0].MediaKey, 16)

		again := ParsePhotoXML(xml, "2")
		assert.Equal(t, media[0].MediaKey, again[0].MediaKey)
	})

	t.Run("should return an empty slice for input with no URL tags", func(t *testing.T) {
		media := ParsePhotoXML("", "1")
		assert.Empty(t, media)
	})
}
