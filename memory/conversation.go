package memory

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/jqian-ml/agent-finie/internal/chat"
)

// Message is a minimal persisted view of a chat turn.
// For simplicity, currently storing only text. Tool exchanges are transient.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text,omitempty"`
}

func LoadConversation(path string) ([]Message, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var msgs []Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func SaveConversation(path string, msgs []Message) error {
	b, err := json.MarshalIndent(msgs, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Reset removes the persisted transcript. A missing file is not an error.
func Reset(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ToChat rebuilds an in-memory transcript from persisted messages.
func ToChat(msgs []Message) []chat.Message {
	out := make([]chat.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, chat.Message{Role: chat.Role(m.Role), Text: m.Text})
	}
	return out
}

// FromChat reduces a transcript to its persistable text messages. Tool calls
// and results are dropped.
func FromChat(msgs []chat.Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		out = append(out, Message{Role: string(m.Role), Text: m.Text})
	}
	return out
}
