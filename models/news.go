package models

// NewsItem represents one candidate or published news unit.
// Title is the memory dedupe key; it may be rewritten before publication.
type NewsItem struct {
	Title     string   `json:"title"`
	Link      string   `json:"link"`
	Published string   `json:"published"`
	Content   string   `json:"content"`
	Comment   string   `json:"comment,omitempty"`
	Images    []string `json:"images"`

	// Embedding is the title embedding, computed lazily during a run. Never persisted.
	Embedding []float64 `json:"-"`
}

// MemoryRecord is the persisted form of a processed NewsItem.
type MemoryRecord struct {
	Title     string   `json:"title"`
	Link      string   `json:"link"`
	Published string   `json:"published"`
	Content   string   `json:"content"`
	Comment   string   `json:"comment,omitempty"`
	Images    []string `json:"images"`
}

// Record converts the item into its persisted form.
func (n NewsItem) Record() MemoryRecord {
	images := make([]string, len(n.Images))
	copy(images, n.Images)
	return MemoryRecord{
		Title:     n.Title,
		Link:      n.Link,
		Published: n.Published,
		Content:   n.Content,
		Comment:   n.Comment,
		Images:    images,
	}
}
