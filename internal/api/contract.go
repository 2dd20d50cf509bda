package api

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ContractVersion identifies the wire shapes below. Bump it when any
// request or response body changes.
const ContractVersion = "v1"

// ContractHeader carries ContractVersion on every request.
const ContractHeader = "X-Contract-Version"

const (
	ChatPath       = "/chat"
	UploadPath     = "/upload"
	UploadField    = "file"
	DefaultBaseURL = "http://localhost:8000"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the success body of POST /chat. Response is a pointer so
// a body without the field can be told apart from an empty reply.
type ChatResponse struct {
	Response *string `json:"response"`
}

// UploadResponse is the success body of POST /upload.
type UploadResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
}

// ErrorResponse is the body the service sends with any non-2xx status.
// Detail is usually a string, but request validation failures carry a
// list of objects.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Msg string `json:"msg"`
}

// DetailText flattens an ErrorResponse detail into display text. It returns
// "" when the detail is absent, null or an empty string.
func DetailText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var issues []validationIssue
	if err := json.Unmarshal(raw, &issues); err == nil && len(issues) > 0 {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if issue.Msg != "" {
				msgs = append(msgs, issue.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}
