package inbound

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fiootv/comms-gateway/internal/model"
)

func mediaForm(values map[string]string) func(string) string {
	return func(name string) string { return values[name] }
}

func TestExtractMedia(t *testing.T) {
	assert := assert.New(t)

	t.Run("two attachments in index order", func(t *testing.T) {
		items := ExtractMedia("2", mediaForm(map[string]string{
			"MediaUrl0":         "https://api.example.com/media/a",
			"MediaContentType0": "image/jpeg",
			"MediaUrl1":         "https://api.example.com/media/b",
			"MediaContentType1": "image/png",
		}))
		assert.Equal([]model.MediaItem{
			{URL: "https://api.example.com/media/a", ContentType: "image/jpeg"},
			{URL: "https://api.example.com/media/b", ContentType: "image/png"},
		}, items)
	})

	t.Run("missing url is skipped, no placeholder", func(t *testing.T) {
		items := ExtractMedia("2", mediaForm(map[string]string{
			"MediaUrl0":         "https://api.example.com/media/a",
			"MediaContentType0": "image/jpeg",
		}))
		assert.Len(items, 1)
		assert.Equal("https://api.example.com/media/a", items[0].URL)
	})

	t.Run("zero count", func(t *testing.T) {
		assert.Empty(ExtractMedia("0", mediaForm(nil)))
	})

	t.Run("absent count", func(t *testing.T) {
		assert.Empty(ExtractMedia("", mediaForm(nil)))
	})

	t.Run("malformed count treated as zero", func(t *testing.T) {
		assert.Empty(ExtractMedia("lots", mediaForm(map[string]string{
			"MediaUrl0": "https://api.example.com/media/a",
		})))
	})

	t.Run("negative count treated as zero", func(t *testing.T) {
		assert.Empty(ExtractMedia("-3", mediaForm(nil)))
	})

	t.Run("count bounds the scan", func(t *testing.T) {
		items := ExtractMedia("1", mediaForm(map[string]string{
			"MediaUrl0": "https://api.example.com/media/a",
			"MediaUrl1": "https://api.example.com/media/b",
		}))
		assert.Len(items, 1)
	})
}
