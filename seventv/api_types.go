package seventv

import (
	"errors"
	"fmt"
)

// ErrUnknownChannel is returned when 7TV has no user for the requested channel.
var ErrUnknownChannel = errors.New("channel has no 7TV account")

type APIError struct {
	StatusCode int    `json:"-"`
	Status     string `json:"-"`
	ErrorText  string `json:"error"`
	ErrorCode  int    `json:"error_code"`
}

func (a APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s (%d)", a.Status, a.StatusCode, a.ErrorText, a.ErrorCode)
}

type (
	// Emote is a single emote as returned by the 7TV v2 REST API.
	Emote struct {
		ID         string     `json:"id"`
		Name       string     `json:"name"`
		Owner      Owner      `json:"owner"`
		Visibility int        `json:"visibility"`
		Mime       string     `json:"mime"`
		Status     int        `json:"status"`
		Tags       []string   `json:"tags"`
		Width      []int      `json:"width"`
		Height     []int      `json:"height"`
		URLs       [][]string `json:"urls"` // [size, url] pairs, ordered 1x..4x
	}
	Owner struct {
		ID          string `json:"id"`
		TwitchID    string `json:"twitch_id"`
		Login       string `json:"login"`
		DisplayName string `json:"display_name"`
	}
)

// URL returns the image url of the given zero based size tier.
func (e Emote) URL(tier int) string {
	if tier < 0 || tier >= len(e.URLs) || len(e.URLs[tier]) < 2 {
		return ""
	}

	return e.URLs[tier][1]
}
