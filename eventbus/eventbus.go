package eventbus

import (
	"context"
	"encoding/json"
	"errors"
)

// Topic은 발행 대상 토픽의 기본 이름을 관리합니다.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// Event는 Kafka 메시지의 페이로드로 사용되는 구조체입니다.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Publisher 인터페이스는 이벤트 발행의 추상화를 정의합니다.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

// ErrClosed는 Close 이후 Publish를 호출했을 때 반환되는 오류입니다.
var ErrClosed = errors.New("eventbus: publisher closed")
