package chat

import "github.com/ageniuscoder/blinkchat/internal/store"

// Inbound events arrive as JSON with a type tag: "sendMessage",
// "deleteMessage" or "addReaction". Unused fields stay zero.
type inboundEvent struct {
	Type string `json:"type"`

	ReceiverID string `json:"receiverId"`

	// sendMessage
	Content        string `json:"content"`
	AttachmentURL  string `json:"attachmentUrl"`
	AttachmentType string `json:"attachmentType"`
	AttachmentName string `json:"attachmentName"`

	// deleteMessage / addReaction
	MessageID         int64  `json:"messageId,string"`
	DeleteForEveryone bool   `json:"deleteForEveryone"`
	Reaction          string `json:"reaction"`
}

type receiveMessageEvent struct {
	Type string `json:"type"`
	store.Message
}

type messageDeletedEvent struct {
	Type              string `json:"type"`
	ChatID            string `json:"chatId"`
	MessageID         int64  `json:"messageId,string"`
	DeleteForEveryone bool   `json:"deleteForEveryone"`
}

type onlineUsersListEvent struct {
	Type    string   `json:"type"`
	UserIDs []string `json:"userIds"`
}

type presenceEvent struct {
	Type   string `json:"type"` // "userOnline" or "userOffline"
	UserID string `json:"userId"`
}

type reactionUpdatedEvent struct {
	Type         string           `json:"type"`
	ChatID       string           `json:"chatId"`
	MessageID    int64            `json:"messageId,string"`
	Reactions    []store.Reaction `json:"reactions"`
	UserReaction string           `json:"userReaction"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
