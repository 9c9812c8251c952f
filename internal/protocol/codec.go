package protocol

import (
	"encoding/json"
	"fmt"
)

// NewMessage 打包一条带类型负载的消息，payload 为 nil 时信封不带负载
func NewMessage(t MessageType, payload any) (*Message, error) {
	msg := &Message{Type: t}
	if payload == nil {
		return msg, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化 %s 负载失败: %w", t, err)
	}
	msg.Payload = data
	return msg, nil
}

// MustNewMessage 同 NewMessage，序列化失败时 panic
// 只用于字段全部可序列化的内部负载结构
func MustNewMessage(t MessageType, payload any) *Message {
	msg, err := NewMessage(t, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// ParsePayload 把消息负载解析为具体类型
func ParsePayload[T any](msg *Message) (*T, error) {
	if len(msg.Payload) == 0 {
		return nil, fmt.Errorf("消息 %s 缺少负载", msg.Type)
	}

	p := new(T)
	if err := json.Unmarshal(msg.Payload, p); err != nil {
		return nil, fmt.Errorf("解析 %s 负载失败: %w", msg.Type, err)
	}
	return p, nil
}

// NewErrorMessage 按错误码生成错误消息，文案取错误码的默认文案
func NewErrorMessage(code int) *Message {
	return NewErrorMessageWithText(code, "")
}

// NewErrorMessageWithText 生成带自定义文案的错误消息
// text 为空时回落到错误码的默认文案
func NewErrorMessageWithText(code int, text string) *Message {
	if text == "" {
		text = errorText(code)
	}
	return MustNewMessage(MsgError, ErrorPayload{Code: code, Message: text})
}

// errorText 查默认文案，未登记的错误码按未知错误处理
func errorText(code int) string {
	if text, ok := ErrorMessages[code]; ok {
		return text
	}
	return ErrorMessages[ErrCodeUnknown]
}
