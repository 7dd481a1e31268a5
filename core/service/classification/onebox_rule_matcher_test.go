package classification

import (
	"testing"

	"github.com/18vikastg/onebox/core/domain"
)

func TestRuleMatcher_Match(t *testing.T) {
	m := NewRuleMatcher()

	tests := []struct {
		name       string
		msg        domain.NormalizedMessage
		wantOK     bool
		wantCat    domain.Category
		wantSignal string
	}{
		{
			name:       "out of office in subject",
			msg:        domain.NormalizedMessage{Subject: "Automatic reply: Out of Office", Body: "I am on vacation until Monday."},
			wantOK:     true,
			wantCat:    domain.CategoryOutOfOffice,
			wantSignal: "ooo:out of office",
		},
		{
			name:    "ooo beats meeting and interest",
			msg:     domain.NormalizedMessage{Subject: "Re: meeting", Body: "I'm traveling, interested to talk next week"},
			wantOK:  true,
			wantCat: domain.CategoryOutOfOffice,
		},
		{
			name:       "spam phrase",
			msg:        domain.NormalizedMessage{Subject: "Congratulations! You have won", Body: "Claim now"},
			wantOK:     true,
			wantCat:    domain.CategorySpam,
			wantSignal: "spam:congratulations",
		},
		{
			name:       "spam sender local part",
			msg:        domain.NormalizedMessage{Sender: "Acme <NoReply@acme.com>", Subject: "Your receipt", Body: "Thanks for your order"},
			wantOK:     true,
			wantCat:    domain.CategorySpam,
			wantSignal: "spam-sender:noreply",
		},
		{
			name:   "marker only in domain is ignored",
			msg:    domain.NormalizedMessage{Sender: "ops@noreply-mail.com", Subject: "Status", Body: "All good"},
			wantOK: false,
		},
		{
			name:       "meeting vocabulary",
			msg:        domain.NormalizedMessage{Subject: "Booking confirmed", Body: "See you on Zoom"},
			wantOK:     true,
			wantCat:    domain.CategoryMeetingBooked,
			wantSignal: "meeting:zoom",
		},
		{
			name:       "interested in body",
			msg:        domain.NormalizedMessage{Subject: "Re: proposal", Body: "Sounds good, please send the deck."},
			wantOK:     true,
			wantCat:    domain.CategoryInterested,
			wantSignal: "interested:sounds good",
		},
		{
			name:   "interested phrase only in subject does not match",
			msg:    domain.NormalizedMessage{Subject: "Demo", Body: "Regards"},
			wantOK: false,
		},
		{
			name:       "decline phrase",
			msg:        domain.NormalizedMessage{Body: "Please remove me from this list."},
			wantOK:     true,
			wantCat:    domain.CategoryNotInterested,
			wantSignal: "not-interested:remove me",
		},
		{
			name:    "interest family precedes decline family",
			msg:     domain.NormalizedMessage{Body: "I'm not interested."},
			wantOK:  true,
			wantCat: domain.CategoryInterested,
		},
		{
			name:    "case insensitive",
			msg:     domain.NormalizedMessage{Body: "TELL ME MORE"},
			wantOK:  true,
			wantCat: domain.CategoryInterested,
		},
		{
			name:   "no decision",
			msg:    domain.NormalizedMessage{Subject: "Hi", Body: "Quick question about your API."},
			wantOK: false,
		},
		{
			name:   "empty message",
			msg:    domain.NormalizedMessage{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Match(&tt.msg)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v (%+v)", tt.wantOK, ok, got)
			}
			if !ok {
				return
			}
			if got.Category != tt.wantCat {
				t.Errorf("expected category %q, got %q", tt.wantCat, got.Category)
			}
			if tt.wantSignal != "" && got.Signal != tt.wantSignal {
				t.Errorf("expected signal %q, got %q", tt.wantSignal, got.Signal)
			}
		})
	}
}

func TestRuleMatcher_Deterministic(t *testing.T) {
	m := NewRuleMatcher()
	msg := &domain.NormalizedMessage{Subject: "Calendar invite", Body: "Would like to chat"}
	first, _ := m.Match(msg)
	for i := 0; i < 5; i++ {
		got, _ := m.Match(msg)
		if got != first {
			t.Fatalf("run %d: expected %+v, got %+v", i, first, got)
		}
	}
}

func TestSenderLocalPart(t *testing.T) {
	tests := []struct{ in, want string }{
		{"no-reply@x.io", "no-reply"},
		{"Bot <DoNotReply@x.io>", "donotreply"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := senderLocalPart(tt.in); got != tt.want {
			t.Errorf("senderLocalPart(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
