package server

import (
	"bite/internal/interaction"
	"bite/internal/session"
)

// interactionSummary is the JSON-facing projection of an Interaction: it
// exposes the running-state record and command text a browser client needs
// to render a session list, without leaking Screen internals over the API.
type interactionSummary struct {
	ID      int64  `json:"id"`
	Command string `json:"command"`
	Phase   string `json:"phase"`
	Code    *int   `json:"code,omitempty"`
	TUIMode bool   `json:"tuiMode"`
}

func phaseName(p interaction.Phase) string {
	switch p {
	case interaction.Running:
		return "running"
	case interaction.Exited:
		return "exited"
	default:
		return "unstarted"
	}
}

// interactionsSnapshot builds the /api/session/interactions response body:
// one summary per Interaction currently held by sess, in submission order.
func interactionsSnapshot(sess *session.Session) []interactionSummary {
	items := sess.Interactions()
	out := make([]interactionSummary, 0, len(items))
	for _, ia := range items {
		s := interactionSummary{
			ID:      ia.ID,
			Command: ia.Command,
			Phase:   phaseName(ia.Running.Phase),
			TUIMode: ia.TUIMode(),
		}
		if ia.Running.Phase == interaction.Exited {
			code := ia.Running.Code
			s.Code = &code
		}
		out = append(out, s)
	}
	return out
}
