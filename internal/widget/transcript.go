// Package widget holds the chat-and-upload component state: an append-only
// transcript, the loader flag that serializes chat sends, and the upload
// board. It performs no I/O and knows nothing about rendering; callers own
// a State value and drive it through Begin/Complete transitions.
package widget

import (
	"strings"
	"time"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one transcript entry. It is never mutated after creation.
type Message struct {
	Text   string
	Sender Sender
	Time   time.Time
}

// Lines splits the text on embedded line breaks. AI replies are displayed
// one line per element; nothing else in the text is interpreted.
func (m Message) Lines() []string {
	return SplitLines(m.Text)
}

// SplitLines splits on \r\n and \n.
func SplitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// Transcript is an ordered, append-only message log.
type Transcript struct {
	messages []Message
}

func (t *Transcript) append(m Message) {
	t.messages = append(t.messages, m)
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Messages returns a copy of the log.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Last returns the newest message.
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}
