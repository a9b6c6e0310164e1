package world

// ChatRole is the speaker of one conversation turn.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatTurn is one earlier message sent along with a chat request.
type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ChatRequest is the body of POST /api/chat. Context carries optional
// grounding text such as a character's role-play prompt.
type ChatRequest struct {
	Message string     `json:"message"`
	Context string     `json:"context,omitempty"`
	History []ChatTurn `json:"history,omitempty"`
}

// ChatResponse is the reply of POST /api/chat.
type ChatResponse struct {
	Text string `json:"text"`
}

// ChatFallback is what viewers see whenever the archive can't answer.
const ChatFallback = "档案馆暂时无法回应，请稍后再试。"
