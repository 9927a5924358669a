package readinglist

import "snippit/internal/domain"

// Buckets splits a reading-list view into unread and read items.
type Buckets struct {
	Unread []domain.Bookmark
	Read   []domain.Bookmark
}

// Split partitions bookmarks by visit count, keeping the incoming order
// within each bucket. A bookmark is unread until its first visit.
func Split(bookmarks []domain.Bookmark) Buckets {
	var out Buckets
	for _, b := range bookmarks {
		if b.VisitCount == 0 {
			out.Unread = append(out.Unread, b)
		} else {
			out.Read = append(out.Read, b)
		}
	}
	return out
}
