// Package router: canned replies used when no provider is available.
package router

import (
	"strings"

	"github.com/TsarRusi/mindmate/internal/util"
)

// cannedTheme pairs trigger keywords with the replies that fit them.
type cannedTheme struct {
	keywords []string
	replies  []string
}

// cannedThemes is the fixed reply table consulted when no provider is
// configured or every provider fails. Selection is a naive keyword match;
// replies for all matching themes are pooled and one is chosen uniformly at
// random to avoid robotic repetition.
var cannedThemes = []cannedTheme{
	{
		keywords: []string{"anxiety", "anxious", "worried", "panic"},
		replies: []string{
			"Anxiety is heavy, I understand. Try the 5-4-3-2-1 grounding technique.",
			"Take 4 slow, deep breaths. You are stronger than you feel right now.",
		},
	},
	{
		keywords: []string{"sad", "down", "lonely", "depressed"},
		replies: []string{
			"Sadness is a normal feeling. Allow yourself to feel it.",
			"Try doing one small kind thing for yourself today.",
		},
	},
	{
		keywords: []string{"stress", "overwhelmed", "pressure", "exhausted"},
		replies: []string{
			"Stress wears you down. The 4-7-8 breathing technique might help.",
			"Try breaking what's ahead of you into small steps.",
		},
	},
}

// generalReplies are used when no theme keyword matches.
var generalReplies = []string{
	"Thank you for sharing. Would you like to talk about it in more detail?",
	"I hear you. Your feelings matter.",
	"What usually helps you in situations like this?",
	"That sounds difficult. Would you like to try a relaxation technique?",
}

// cannedReply selects a canned response for the message: uniform random
// choice among the replies of every matching theme, falling back to a
// generic supportive reply when nothing matches. Always non-empty.
func cannedReply(text string) string {
	folded := strings.ToLower(text)

	var pool []string
	for _, theme := range cannedThemes {
		for _, keyword := range theme.keywords {
			if strings.Contains(folded, keyword) {
				pool = append(pool, theme.replies...)
				break
			}
		}
	}
	if len(pool) == 0 {
		pool = generalReplies
	}
	return util.PickOne(pool)
}
