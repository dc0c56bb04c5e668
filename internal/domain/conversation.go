package domain

// Message roles understood by the completion service
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn sent to the completion service
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Exchange is a recorded (input, output) pair in a conversation's memory
type Exchange struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ExchangesToMessages expands recorded exchanges into alternating user/assistant turns
func ExchangesToMessages(history []Exchange) []Message {
	messages := make([]Message, 0, len(history)*2)
	for _, ex := range history {
		messages = append(messages,
			Message{Role: RoleUser, Content: ex.Input},
			Message{Role: RoleAssistant, Content: ex.Output},
		)
	}
	return messages
}
