package conversation

// Author identifies who wrote a chat message.
type Author string

// Author constants.
const (
	AuthorUser  Author = "user"
	AuthorModel Author = "model"
)

// PlaceholderID is the id of the greeting shown in a chat that has not been
// persisted yet. A message with this id is never stored.
const PlaceholderID = "initial"

// Greeting is the text of the placeholder message.
const Greeting = "Hello! I'm Gemini. How can I assist you today? You can ask me anything!"

// Chat model defaults.
const (
	DefaultChatModel = "gemini-2.5-flash"
)

// ChatModels lists the selectable chat models.
var ChatModels = []string{"gemini-2.5-flash", "gemini-2.5-pro"}

// Message is a single chat message.
type Message struct {
	ID      string `json:"id"`
	Author  Author `json:"author"`
	Content string `json:"content"`
}

// Placeholder returns the synthetic greeting for a brand-new chat.
func Placeholder() Message {
	return Message{ID: PlaceholderID, Author: AuthorModel, Content: Greeting}
}

// IsPlaceholder reports whether m is the synthetic greeting.
func (m Message) IsPlaceholder() bool {
	return m.ID == PlaceholderID
}

// Chat is the free-form chat variant.
type Chat struct {
	// Model is the chat model the conversation was started with.
	Model    string
	Messages []Message
}

// NewChat returns chat content holding a single first message.
func NewChat(model string, first Message) *Chat {
	c := &Chat{Model: model}
	c.Append(first)
	return c
}

// Append adds m to the end of the conversation. The placeholder greeting is ignored.
func (c *Chat) Append(m Message) {
	if m.IsPlaceholder() {
		return
	}
	c.Messages = append(c.Messages, m)
}

// Kind implements Content.
func (c *Chat) Kind() Kind { return KindChat }

// Entries implements Content.
func (c *Chat) Entries() int { return len(c.Messages) }

// Accept implements Content.
func (c *Chat) Accept(v Visitor) { v.VisitChat(c) }

func (c *Chat) sealed() {}
