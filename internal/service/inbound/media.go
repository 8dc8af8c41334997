package inbound

import (
	"strconv"
	"strings"

	"github.com/fiootv/comms-gateway/internal/model"
)

// ExtractMedia collects the provider-declared attachments into index order.
// numMedia is the raw NumMedia form value; field resolves an indexed form
// field (MediaUrl0, MediaContentType0, ...). An index with no URL is skipped,
// a malformed or absent count yields an empty list. Best-effort: never fails.
func ExtractMedia(numMedia string, field func(string) string) []model.MediaItem {
	n, err := strconv.Atoi(strings.TrimSpace(numMedia))
	if err != nil || n <= 0 {
		return []model.MediaItem{}
	}

	items := make([]model.MediaItem, 0, n)
	for i := 0; i < n; i++ {
		url := field("MediaUrl" + strconv.Itoa(i))
		if url == "" {
			continue
		}
		items = append(items, model.MediaItem{
			URL:         url,
			ContentType: field("MediaContentType" + strconv.Itoa(i)),
		})
	}
	return items
}
