package checkout

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// Contacts holds the shop's direct-message targets.
type Contacts struct {
	InstagramURL string
	ViberNumber  string
}

// DefaultContacts are the shop's public accounts.
var DefaultContacts = Contacts{
	InstagramURL: "https://www.instagram.com/hpglowpeptides",
	ViberNumber:  "09062349763",
}

// URL is the deep link that opens a conversation on channel, or "".
func (c Contacts) URL(channel ContactChannel) string {
	switch channel {
	case ContactInstagram:
		return c.InstagramURL
	case ContactViber:
		return "viber://chat?number=" + url.QueryEscape(c.ViberNumber)
	}
	return ""
}

// Line is the contact line printed in the order summary.
func (c Contacts) Line(channel ContactChannel) string {
	switch channel {
	case ContactInstagram:
		return "Instagram: " + c.InstagramURL
	case ContactViber:
		return "Viber: " + c.ViberNumber
	}
	return "Not selected"
}

// Launcher opens a contact link for the customer. It reports false when the
// link could not be opened so the confirmation can offer a manual fallback.
type Launcher interface {
	Open(ctx context.Context, link string) (bool, error)
}

// HandoffLauncher accepts links the customer's device can open itself and
// hands them to the client in the confirmation.
type HandoffLauncher struct{}

func (HandoffLauncher) Open(_ context.Context, link string) (bool, error) {
	u, err := url.Parse(link)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(u.Scheme) {
	case "https", "http", "viber":
		return true, nil
	}
	return false, errors.New("unsupported contact link scheme: " + u.Scheme)
}

// Clipboard copies text for the customer.
type Clipboard interface {
	Copy(text string) error
}

// CopyMethod is how a summary ended up being copied.
type CopyMethod string

const (
	CopiedPrimary  CopyMethod = "primary"
	CopiedFallback CopyMethod = "fallback"
	CopyManual     CopyMethod = "manual"
)

// CopyOutcome tells the client whether to show "copied" or ask the
// customer to select the text by hand.
type CopyOutcome struct {
	Copied bool       `json:"copied"`
	Method CopyMethod `json:"method"`
}

// Copy tries primary, then fallback. When both fail the customer has to
// select and copy the summary manually.
func (c *Confirmation) Copy(primary, fallback Clipboard) CopyOutcome {
	if primary != nil && primary.Copy(c.Summary) == nil {
		return CopyOutcome{Copied: true, Method: CopiedPrimary}
	}
	if fallback != nil && fallback.Copy(c.Summary) == nil {
		return CopyOutcome{Copied: true, Method: CopiedFallback}
	}
	return CopyOutcome{Method: CopyManual}
}
