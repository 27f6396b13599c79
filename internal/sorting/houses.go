package sorting

import (
	"github.com/Veraticus/sorting-hat/internal/model"
)

// Houses is the fixed, ordered list of categories. Order is significant.
var Houses = []model.Category{
	{Index: 0, Name: "グリフィンドール", Accent: model.Accent{Class: "text-red-500", Color: "#ef4444"}},
	{Index: 1, Name: "スリザリン", Accent: model.Accent{Class: "text-green-500", Color: "#22c55e"}},
	{Index: 2, Name: "レイブンクロー", Accent: model.Accent{Class: "text-blue-500", Color: "#3b82f6"}},
	{Index: 3, Name: "ハッフルパフ", Accent: model.Accent{Class: "text-yellow-400", Color: "#facc15"}},
}

// Messages is the script played while the hat deliberates.
var Messages = []string{
	"ふむ...難しい、とても難しい...",
	"勇気があるようだ...",
	"頭脳明晰だ...",
	"そうだな...君の運命の寮は...",
}

// Magnitude returns |h| without overflowing on math.MinInt32.
func Magnitude(h int32) uint32 {
	if h < 0 {
		return uint32(-int64(h))
	}
	return uint32(h)
}

// Index returns the category index for h among k categories.
func Index(h int32, k int) int {
	if k <= 0 {
		return 0
	}
	return int(Magnitude(h) % uint32(k))
}

// Assign picks the category for h from cats. An empty list yields the zero Category.
func Assign(h int32, cats []model.Category) model.Category {
	if len(cats) == 0 {
		return model.Category{}
	}
	return cats[Index(h, len(cats))]
}

// Sort hashes encoded and assigns it to one of the Houses.
func Sort(encoded string) (model.Category, int32) {
	h := Hash(encoded)
	return Assign(h, Houses), h
}

// HouseByName looks up a house by its label.
func HouseByName(name string) (model.Category, bool) {
	for _, h := range Houses {
		if h.Name == name {
			return h, true
		}
	}
	return model.Category{}, false
}
