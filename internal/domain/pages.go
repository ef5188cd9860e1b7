package domain

import "sort"

// PageType classifies a page produced by the upstream page-classification
// collaborator.
type PageType string

const (
	PageTypeStatement   PageType = "statement"
	PageTypeAttachment  PageType = "attachment"
	PageTypePromotional PageType = "promotional"
	PageTypeBlank       PageType = "blank"
)

// PageRange is a run of consecutive pages of the same type. Page numbers are
// 1-indexed and inclusive.
type PageRange struct {
	Start    int      `json:"start"`
	End      int      `json:"end"`
	PageType PageType `json:"page_type"`
}

// FilterRelevantPages keeps only ranges that carry statement content,
// dropping promotional and blank pages.
func FilterRelevantPages(ranges []PageRange) []PageRange {
	out := make([]PageRange, 0, len(ranges))
	for _, pr := range ranges {
		if pr.PageType == PageTypeStatement || pr.PageType == PageTypeAttachment {
			out = append(out, pr)
		}
	}
	return out
}

// PageNumbers expands the ranges into a sorted, de-duplicated list of page
// numbers.
func PageNumbers(ranges []PageRange) []int {
	seen := make(map[int]bool)
	for _, pr := range ranges {
		for p := pr.Start; p <= pr.End; p++ {
			seen[p] = true
		}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}
