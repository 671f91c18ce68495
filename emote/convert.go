package emote

import "github.com/julez-dev/stvsync/seventv"

type AppURLer interface {
	EmoteAppURL(e seventv.Emote) string
}

type Converter struct {
	urls AppURLer
}

func NewConverter(urls AppURLer) Converter {
	return Converter{urls: urls}
}

// Convert maps a 7TV emote to its host platform form.
// The record is expected to carry four size tiers and at least one width and height.
func (c Converter) Convert(e seventv.Emote) Emote {
	source := e

	return Emote{
		ID:   e.ID,
		Name: e.Name,
		Owner: Owner{
			DisplayName: e.Owner.DisplayName,
			Name:        e.Owner.Login,
		},
		URLs: map[int]string{
			1: e.URL(0),
			2: e.URL(1),
			3: e.URL(2),
			4: e.URL(3),
		},
		Modifier:       HasFlag(e.Visibility, VisibilityZeroWidth),
		ModifierOffset: "0",
		Width:          e.Width[0],
		Height:         e.Height[0],
		ClickURL:       c.urls.EmoteAppURL(e),
		Source:         &source,
	}
}
