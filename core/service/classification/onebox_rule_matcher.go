// Package classification implements two-tier lead classification: fixed rules first, LLM fallback second.
package classification

import (
	"net/mail"
	"strings"

	"github.com/18vikastg/onebox/core/domain"
)

// matchScope selects which message fields a rule family inspects.
type matchScope int

const (
	scopeSubjectOrBody matchScope = iota
	scopeBodyOnly
)

// ruleFamily is one precedence step of the rule matcher.
type ruleFamily struct {
	name     string
	category domain.Category
	scope    matchScope
	phrases  []string
}

// Families are evaluated in this order and the first hit wins.
// Out-of-office goes first so "on leave" or "traveling" are not read as scheduling or interest.
var ruleFamilies = []ruleFamily{
	{
		name:     "ooo",
		category: domain.CategoryOutOfOffice,
		scope:    scopeSubjectOrBody,
		phrases: []string{
			"out of office", "currently away", "vacation", "holiday", "automatic reply",
			"auto reply", "away from office", "not available", "on leave", "traveling",
		},
	},
	{
		name:     "spam",
		category: domain.CategorySpam,
		scope:    scopeSubjectOrBody,
		phrases: []string{
			"unsubscribe", "click here", "limited time offer", "act now", "free gift",
			"congratulations", "you have won", "claim now", "viagra", "casino",
			"lottery", "millionaire", "inheritance",
		},
	},
	{
		name:     "meeting",
		category: domain.CategoryMeetingBooked,
		scope:    scopeSubjectOrBody,
		phrases: []string{
			"meeting", "calendar", "scheduled", "appointment", "invite", "zoom", "teams",
			"google meet", "conference call", "call scheduled", "booking confirmed",
			"meeting request", "reschedule",
		},
	},
	{
		name:     "interested",
		category: domain.CategoryInterested,
		scope:    scopeBodyOnly,
		phrases: []string{
			"interested", "tell me more", "looking forward", "sounds good", "please send",
			"would like to", "can you", "more information", "demo", "trial", "proposal",
		},
	},
	{
		name:     "not-interested",
		category: domain.CategoryNotInterested,
		scope:    scopeBodyOnly,
		phrases: []string{
			"not interested", "no thank you", "remove me", "stop emailing",
			"not at this time", "pass on this", "not a good fit",
		},
	},
}

// bulkSenderMarkers flag automated senders when found in the address local-part.
var bulkSenderMarkers = []string{"noreply", "no-reply", "donotreply"}

// RuleMatch is a rule decision with the signal that produced it.
type RuleMatch struct {
	Category domain.Category
	Signal   string
}

// RuleMatcher is the deterministic first tier. It holds no state.
type RuleMatcher struct {
	families []ruleFamily
}

// NewRuleMatcher creates a rule matcher with the built-in phrase families.
func NewRuleMatcher() *RuleMatcher {
	return &RuleMatcher{families: ruleFamilies}
}

// Match returns the first family that fires, or ok=false when no rule decides.
func (m *RuleMatcher) Match(msg *domain.NormalizedMessage) (RuleMatch, bool) {
	subject := strings.ToLower(msg.Subject)
	body := strings.ToLower(msg.Body)

	for _, f := range m.families {
		if phrase, ok := f.find(subject, body); ok {
			return RuleMatch{Category: f.category, Signal: f.name + ":" + phrase}, true
		}
		if f.category == domain.CategorySpam {
			if marker, ok := bulkSenderMarker(msg.Sender); ok {
				return RuleMatch{Category: domain.CategorySpam, Signal: "spam-sender:" + marker}, true
			}
		}
	}
	return RuleMatch{}, false
}

func (f ruleFamily) find(subject, body string) (string, bool) {
	for _, p := range f.phrases {
		if strings.Contains(body, p) {
			return p, true
		}
		if f.scope == scopeSubjectOrBody && strings.Contains(subject, p) {
			return p, true
		}
	}
	return "", false
}

func bulkSenderMarker(sender string) (string, bool) {
	local := senderLocalPart(sender)
	for _, marker := range bulkSenderMarkers {
		if strings.Contains(local, marker) {
			return marker, true
		}
	}
	return "", false
}

// senderLocalPart returns the lowercase part before '@', accepting "Name <addr>" forms.
func senderLocalPart(sender string) string {
	addr := sender
	if parsed, err := mail.ParseAddress(sender); err == nil {
		addr = parsed.Address
	}
	addr = strings.ToLower(strings.TrimSpace(addr))
	if i := strings.LastIndex(addr, "@"); i >= 0 {
		return addr[:i]
	}
	return addr
}
