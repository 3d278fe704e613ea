package model

// Item is the domain model for a todo entry as the remote store returns it.
// ID is assigned by the server and never generated locally.
type Item struct {
	ID        string `json:"_id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Patch is a partial update. Nil fields are left untouched by the server.
type Patch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// TextPatch builds a rename patch.
func TextPatch(text string) Patch { return Patch{Text: &text} }

// CompletedPatch builds a completion patch.
func CompletedPatch(done bool) Patch { return Patch{Completed: &done} }

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool { return p.Text == nil && p.Completed == nil }
