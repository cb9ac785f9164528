package events

import "time"

// EventType 이벤트 타입 정의
type EventType string

const (
	PageMetaUpdated EventType = "page.meta_updated"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// PageMetaUpdatedEvent 페이지 메타(title/description)가 적용되었음을 알리는 이벤트
type PageMetaUpdatedEvent struct {
	BaseEvent
	Page        string `json:"page"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
