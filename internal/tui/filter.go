package tui

import "github.com/nixlim/chatprint/internal/transcript"

// SenderFilter restricts the pager to the entries of one sender. An empty
// Sender shows everything.
type SenderFilter struct {
	Sender string
}

// Matches returns true if e passes the filter.
func (f SenderFilter) Matches(e transcript.Entry) bool {
	return f.Sender == "" || e.Sender == f.Sender
}

// Next advances to the sender after the current one. Past the last sender,
// or when the current sender is no longer known, the filter shows
// everything again.
func (f SenderFilter) Next(senders []string) SenderFilter {
	if len(senders) == 0 {
		return SenderFilter{}
	}
	if f.Sender == "" {
		return SenderFilter{Sender: senders[0]}
	}
	for i, s := range senders {
		if s == f.Sender && i+1 < len(senders) {
			return SenderFilter{Sender: senders[i+1]}
		}
	}
	return SenderFilter{}
}

// Label describes the filter for the status bar.
func (f SenderFilter) Label() string {
	if f.Sender == "" {
		return "all senders"
	}
	return "sender: " + f.Sender
}
