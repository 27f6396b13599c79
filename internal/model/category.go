// Package model defines the core data types shared across the application.
package model

// Accent is the display accent attached to a category.
type Accent struct {
	// Class is the stylesheet class web front ends style the label with.
	Class string
	// Color is the hex color terminal front ends render the label with.
	Color string
}

// Category is one of the fixed outcome labels an image can be sorted into.
type Category struct {
	Accent Accent
	Name   string
	Index  int
}

// IsZero reports whether c is the zero category (no category assigned).
func (c Category) IsZero() bool {
	return c.Name == ""
}
