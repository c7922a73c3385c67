package models

import "time"

// Chat room types.
const (
	RoomSupport        = "support"
	RoomProductInquiry = "product_inquiry"
)

// ChatRoom pairs two participants. Rooms are created lazily on first
// contact; inquiry rooms additionally carry the product they concern.
type ChatRoom struct {
	RoomID       string    `json:"roomId" bson:"roomid"`
	Participants []string  `json:"participants" bson:"participants"` // stored sorted
	Type         string    `json:"type" bson:"type"`
	ProductID    string    `json:"productId,omitempty" bson:"productId,omitempty"`
	LastMessage  string    `json:"lastMessage,omitempty" bson:"lastMessage,omitempty"`
	LastActive   time.Time `json:"lastActive" bson:"lastActive"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// Message is one entry in a room's append-only stream.
type Message struct {
	MessageID string `json:"messageId" bson:"messageid"`
	Room      string `json:"room" bson:"room"`
	SenderID  string `json:"senderId" bson:"senderId"`
	Content   string `json:"content" bson:"content"`
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
}
