package models

// ChecklistTemplate is an immutable catalog entry.
type ChecklistTemplate struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// ChecklistItem is one line of a template, ordered by id.
type ChecklistItem struct {
	ID         int64  `json:"id"`
	TemplateID int64  `json:"template_id"`
	ItemText   string `json:"item_text"`
	Category   string `json:"category"`
}
