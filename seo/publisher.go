package seo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"podbase-blog/eventbus"
	"podbase-blog/events"
	"podbase-blog/logger"
)

const publishTimeout = 5 * time.Second

// EventPublisher publishes page.meta_updated events in the background.
// SetPageMeta returns immediately; failures are only logged.
type EventPublisher struct {
	bus    eventbus.Publisher
	topic  string
	source string
	page   string
	wg     sync.WaitGroup
}

func NewEventPublisher(bus eventbus.Publisher, topic, source, page string) *EventPublisher {
	if topic == "" {
		topic = eventbus.TopicPageEvents.Base()
	}
	return &EventPublisher{bus: bus, topic: topic, source: source, page: page}
}

func (p *EventPublisher) SetPageMeta(ctx context.Context, meta PageMeta) {
	evt := events.PageMetaUpdatedEvent{
		BaseEvent: events.BaseEvent{
			ID:        uuid.New().String(),
			Type:      events.PageMetaUpdated,
			Timestamp: time.Now().UTC(),
			Source:    p.source,
			Version:   "1",
		},
		Page:        p.page,
		Title:       meta.Title,
		Description: meta.Description,
	}

	// 호출자 ctx 가 먼저 끝나도 발행은 계속되도록 취소만 분리한다.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()

		if err := p.publish(pubCtx, evt); err != nil {
			logger.ErrorWithFields("page meta publish failed", logger.Fields{
				"event_id": evt.ID,
				"topic":    p.topic,
				"error":    err.Error(),
			})
			return
		}
		logger.DebugWithFields("page meta published", logger.Fields{
			"event_id": evt.ID,
			"topic":    p.topic,
			"title":    meta.Title,
		})
	}()
}

func (p *EventPublisher) publish(ctx context.Context, evt events.PageMetaUpdatedEvent) error {
	msg, err := eventbus.NewJSONEvent(evt.ID, string(evt.Type), evt)
	if err != nil {
		return err
	}
	return p.bus.Publish(ctx, p.topic, msg)
}

// Wait blocks until every background publish has finished.
func (p *EventPublisher) Wait() {
	p.wg.Wait()
}
