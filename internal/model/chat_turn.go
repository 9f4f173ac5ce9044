// Package model 包含了应用的数据模型定义。
package model

// Sender 标识一条消息的发送方。
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Valid 判断 sender 是否属于允许的取值集合。
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAI
}

// ChatTurn 代表会话中的一条消息，每次 predict 产生两条：用户输入和模型回复。
// 同一会话内的顺序仅由自增主键决定。
type ChatTurn struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	SessionID string `gorm:"type:varchar(64);index;not null" json:"sessionId"`
	Sender    Sender `gorm:"type:varchar(10);not null;check:chk_chat_turns_sender,sender IN ('user','ai')" json:"sender"`
	Text      string `gorm:"type:text;not null" json:"text"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}
