package workflow

import "github.com/calebhart/drift/internal/provider"

// Transcript is the ordered conversation history. It supports marking a
// position and rolling back to it, which is how a cancelled cycle is
// unwound without leaving a half-finished exchange behind.
type Transcript struct {
	messages []provider.Message
}

// NewTranscript creates a transcript seeded with the given messages.
func NewTranscript(seed ...provider.Message) *Transcript {
	t := &Transcript{}
	t.messages = append(t.messages, seed...)
	return t
}

// Append adds messages to the end of the transcript.
func (t *Transcript) Append(messages ...provider.Message) {
	t.messages = append(t.messages, messages...)
}

// Messages returns a copy of the transcript contents.
func (t *Transcript) Messages() []provider.Message {
	out := make([]provider.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int { return len(t.messages) }

// Mark returns the current length for a later Rollback.
func (t *Transcript) Mark() int { return len(t.messages) }

// Rollback discards every message appended since mark. Marks beyond the
// current length are a no-op.
func (t *Transcript) Rollback(mark int) {
	if mark < 0 {
		mark = 0
	}
	if mark < len(t.messages) {
		t.messages = t.messages[:mark]
	}
}
