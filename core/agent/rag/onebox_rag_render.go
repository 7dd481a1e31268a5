package rag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/18vikastg/onebox/core/domain"
)

var ErrUnknownPlaceholder = errors.New("unknown template placeholder")

const fallbackReply = "Thank you for your email. I'll get back to you soon!\n\nBest regards,\n{name}"

// Renderer substitutes the user's signature fields into template bodies.
type Renderer struct {
	replacer *strings.Replacer
}

func NewRenderer(user domain.UserContext) *Renderer {
	return &Renderer{
		replacer: strings.NewReplacer(
			domain.PlaceholderName, user.Name,
			domain.PlaceholderCalendarLink, user.CalendarLink,
			domain.PlaceholderEmail, user.Email,
			domain.PlaceholderPhone, user.Phone,
			domain.PlaceholderCurrentRole, user.CurrentRole,
		),
	}
}

// Render fills placeholders. An empty body renders the generic fallback reply.
func (r *Renderer) Render(body string) string {
	if strings.TrimSpace(body) == "" {
		body = fallbackReply
	}
	return r.replacer.Replace(body)
}

// CheckPlaceholders returns ErrUnknownPlaceholder for any {token} outside the supported set.
func CheckPlaceholders(body string) error {
	for _, p := range domain.Placeholders(body) {
		if !domain.KnownPlaceholder(p) {
			return fmt.Errorf("%w: %s", ErrUnknownPlaceholder, p)
		}
	}
	return nil
}
