package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageMetaUpdatedWireFormat(t *testing.T) {
	in := PageMetaUpdatedEvent{
		BaseEvent: BaseEvent{
			ID:        "evt-1",
			Type:      PageMetaUpdated,
			Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			Source:    "browse",
			Version:   "1",
		},
		Page:        "blog",
		Title:       "Blog",
		Description: "news",
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "evt-1",
		"type": "page.meta_updated",
		"timestamp": "2024-01-02T03:04:05Z",
		"source": "browse",
		"version": "1",
		"page": "blog",
		"title": "Blog",
		"description": "news"
	}`, string(data))

	var out PageMetaUpdatedEvent
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
