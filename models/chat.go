package models

// ChatRequest is the body of POST /. The alternate client variant sends
// "prompt" instead of "message".
type ChatRequest struct {
	Message string `json:"message"`
	Prompt  string `json:"prompt,omitempty"`
}

// Text returns message, or prompt when message is empty.
func (r ChatRequest) Text() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Prompt
}

// ChatResponse is returned on success.
type ChatResponse struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Intent  string `json:"intent,omitempty"`
}

// ErrorResponse is returned on every failure path.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}
