package domain

import (
	"fmt"
	"strings"
)

// ChatRole identifies who wrote a message in a reflex conversation.
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatMessage is one turn of a reflex conversation. Learner turns may be
// written in Chinese, Vietnamese or English.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ValidateChatHistory checks that every message has a known role and text,
// and that a non-empty history ends with a learner turn waiting for a reply.
func ValidateChatHistory(history []ChatMessage) error {
	for i, msg := range history {
		if msg.Role != ChatRoleUser && msg.Role != ChatRoleModel {
			return fmt.Errorf("%w: message %d has unknown role %q", ErrInvalidChatHistory, i+1, msg.Role)
		}
		if strings.TrimSpace(msg.Content) == "" {
			return fmt.Errorf("%w: message %d is empty", ErrInvalidChatHistory, i+1)
		}
	}
	if n := len(history); n > 0 && history[n-1].Role != ChatRoleUser {
		return fmt.Errorf("%w: last message must come from the user", ErrInvalidChatHistory)
	}
	return nil
}

// Reflex score bounds.
const (
	MinReflexScore = 0
	MaxReflexScore = 100
)

// ReflexEvaluation grades the learner's latest message.
type ReflexEvaluation struct {
	// Chinese is the learner's message, translated when it was not written
	// in Chinese.
	Chinese               string `json:"chinese"`
	Pinyin                string `json:"pinyin"`
	Translation           string `json:"translation"`
	Score                 int    `json:"score"`
	Grammar               string `json:"grammar"`
	Context               string `json:"context"`
	VocabUsage            string `json:"vocab_usage"`
	Suggestion            string `json:"suggestion"`
	SuggestionPinyin      string `json:"suggestion_pinyin"`
	SuggestionTranslation string `json:"suggestion_translation"`
}

// ReflexMessage is the tutor's next line in the conversation.
type ReflexMessage struct {
	Chinese     string `json:"chinese"`
	Pinyin      string `json:"pinyin"`
	Translation string `json:"translation"`
}

// ReflexReply answers one learner turn. Evaluation is nil for the opening
// message of a conversation.
type ReflexReply struct {
	Evaluation *ReflexEvaluation `json:"evaluation,omitempty"`
	Next       ReflexMessage     `json:"next_message"`
}
