package widget

import (
	"fmt"
	"strings"
	"time"

	"ragchat/internal/api"
)

const (
	DefaultPlaceholder = "Ask anything about your documents..."
	LoadingPlaceholder = "Thinking..."
	FallbackDetail     = "Something went wrong"
)

// State is the whole component: transcript, loader flag and upload board.
// The render layer is a function of this value.
type State struct {
	Transcript Transcript
	Uploads    *UploadBoard

	loading bool
	// port is quoted in the transport failure message.
	port string
	now  func() time.Time
}

// NewState returns an idle component. backendPort is the port quoted when
// the service cannot be reached.
func NewState(backendPort string) *State {
	if backendPort == "" {
		backendPort = "8000"
	}
	return &State{Uploads: NewUploadBoard(), port: backendPort, now: time.Now}
}

// Loading reports whether a chat request is in flight.
func (s *State) Loading() bool {
	return s.loading
}

// Placeholder is the input hint for the current loader state.
func (s *State) Placeholder() string {
	if s.loading {
		return LoadingPlaceholder
	}
	return DefaultPlaceholder
}

// BeginSend starts a chat exchange. It trims raw and, unless the text is
// empty or a request is already in flight, appends the user message,
// engages the loader and returns the text to send. ok=false means nothing
// changed and no request must be issued.
func (s *State) BeginSend(raw string) (text string, ok bool) {
	text = strings.TrimSpace(raw)
	if text == "" || s.loading {
		return "", false
	}
	s.Transcript.append(Message{Text: text, Sender: SenderUser, Time: s.now()})
	s.loading = true
	return text, true
}

// CompleteSend ends the in-flight exchange: it appends exactly one AI
// message describing the outcome and releases the loader. Calling it with
// no exchange in flight is a no-op returning false.
func (s *State) CompleteSend(reply string, err error) (Message, bool) {
	if !s.loading {
		return Message{}, false
	}
	s.loading = false
	msg := Message{Text: ReplyText(reply, err, s.port), Sender: SenderAI, Time: s.now()}
	s.Transcript.append(msg)
	return msg, true
}

// ReplyText maps a chat outcome to the AI message text.
func ReplyText(reply string, err error, port string) string {
	if err == nil {
		return reply
	}
	if se, ok := api.IsStatus(err); ok {
		detail := se.Detail
		if detail == "" {
			detail = FallbackDetail
		}
		return "Error: " + detail
	}
	return TransportFailureText(port)
}

// TransportFailureText is shown when the service could not be reached.
func TransportFailureText(port string) string {
	return fmt.Sprintf("Could not connect to the backend server. Make sure it is running on port %s.", port)
}
