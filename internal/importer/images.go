package importer

import (
	"fmt"
	"strings"
)

var combinedImageAliases = []string{"image_urls", "images", "image_links"}

// maxNumberedImages caps the per-row numbered image columns (image_1..image_7).
const maxNumberedImages = 7

// ExtractImageURLs collects the image URLs referenced by a row: first a
// combined list column split on ';' and ',', then the numbered columns,
// de-duplicated keeping the first occurrence.
func ExtractImageURLs(row Row) []string {
	var urls []string

	if combined := row.Value(combinedImageAliases, ""); combined != "" {
		for _, piece := range strings.Split(strings.ReplaceAll(combined, ";", ","), ",") {
			if url := strings.TrimSpace(piece); url != "" {
				urls = append(urls, url)
			}
		}
	}

	for i := 1; i <= maxNumberedImages; i++ {
		aliases := []string{
			fmt.Sprintf("image_%d", i),
			fmt.Sprintf("image%d", i),
			fmt.Sprintf("image_url_%d", i),
			fmt.Sprintf("image_url%d", i),
		}
		if url := row.Value(aliases, ""); url != "" {
			urls = append(urls, url)
		}
	}

	seen := make(map[string]bool, len(urls))
	deduped := urls[:0]
	for _, url := range urls {
		if !seen[url] {
			seen[url] = true
			deduped = append(deduped, url)
		}
	}

	return deduped
}
