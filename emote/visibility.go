package emote

import "github.com/julez-dev/stvsync/seventv"

// Visibility flags of a 7TV emote.
const (
	VisibilityPrivate                  = 1 << 0
	VisibilityGlobal                   = 1 << 1
	VisibilityUnlisted                 = 1 << 2
	VisibilityOverrideBTTV             = 1 << 3
	VisibilityOverrideFFZ              = 1 << 4
	VisibilityOverrideTwitchGlobal     = 1 << 5
	VisibilityOverrideTwitchSubscriber = 1 << 6
	VisibilityZeroWidth                = 1 << 7
	VisibilityPermanentlyUnlisted      = 1 << 8
)

// HasFlag reports whether every bit of mask is set in value.
func HasFlag(value, mask int) bool {
	return value&mask == mask
}

// IsUnlisted reports whether 7TV moderators flagged the emote as unlisted.
func IsUnlisted(e seventv.Emote) bool {
	return HasFlag(e.Visibility, VisibilityUnlisted) || HasFlag(e.Visibility, VisibilityPermanentlyUnlisted)
}
