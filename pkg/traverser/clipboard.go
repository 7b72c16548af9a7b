package traverser

import (
	"slices"

	"tableflip.dev/factlog/pkg/fact"
)

// Clipboard holds fact metadata copied for pasting onto other facts.
type Clipboard struct {
	activity    *string
	category    string
	tags        []string
	description *string

	// pasted counts pastes onto the current fact; moving resets it.
	pasted int
}

// Empty reports whether nothing was copied yet.
func (c *Clipboard) Empty() bool {
	return c.activity == nil && c.tags == nil && c.description == nil
}

func (c *Clipboard) clear() {
	*c = Clipboard{}
}

// CopyActivity replaces the clipboard with the activity and category of f.
func (c *Clipboard) CopyActivity(f *fact.Fact) {
	c.clear()
	activity := f.Activity
	c.activity = &activity
	c.category = f.Category
}

// CopyTags replaces the clipboard with the tags of f.
func (c *Clipboard) CopyTags(f *fact.Fact) {
	c.clear()
	c.tags = slices.Clone(f.Tags)
	if c.tags == nil {
		c.tags = []string{}
	}
}

// CopyDescription replaces the clipboard with the description of f.
func (c *Clipboard) CopyDescription(f *fact.Fact) {
	c.clear()
	desc := f.Description
	c.description = &desc
}

// CopyFact replaces the clipboard with all the metadata of f.
func (c *Clipboard) CopyFact(f *fact.Fact) {
	c.CopyActivity(f)
	c.tags = slices.Clone(f.Tags)
	if c.tags == nil {
		c.tags = []string{}
	}
	desc := f.Description
	c.description = &desc
}

// PasteInto writes the copied metadata onto f and names what was pasted.
func (c *Clipboard) PasteInto(f *fact.Fact) string {
	c.pasted++
	var what []string
	if c.activity != nil {
		f.Activity = *c.activity
		f.Category = c.category
		what = append(what, "activity")
	}
	if c.tags != nil {
		f.Tags = slices.Clone(c.tags)
		what = append(what, "tags")
	}
	if c.description != nil {
		f.Description = *c.description
		what = append(what, "description")
	}
	switch len(what) {
	case 0:
		return ""
	case 3:
		return "fact"
	}
	return what[0]
}

// Pasted is the number of pastes since the cursor last moved.
func (c *Clipboard) Pasted() int {
	return c.pasted
}

// ResetPaste is called when the cursor moves to another fact.
func (c *Clipboard) ResetPaste() {
	c.pasted = 0
}
