// Package seo applies page-level metadata (title, description) for the blog page.
// Every MetaService is fire-and-forget: callers never wait for or inspect a result.
package seo

import (
	"context"

	"podbase-blog/logger"
)

type PageMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type MetaService interface {
	SetPageMeta(ctx context.Context, meta PageMeta)
}

// MetaFunc adapts a plain function to MetaService.
type MetaFunc func(ctx context.Context, meta PageMeta)

func (f MetaFunc) SetPageMeta(ctx context.Context, meta PageMeta) { f(ctx, meta) }

// LogMeta only records the metadata in the structured log.
type LogMeta struct{}

func (LogMeta) SetPageMeta(_ context.Context, meta PageMeta) {
	logger.InfoWithFields("page meta applied", logger.Fields{
		"title":       meta.Title,
		"description": meta.Description,
	})
}

// Multi fans the metadata out to every service in order.
type Multi []MetaService

func (m Multi) SetPageMeta(ctx context.Context, meta PageMeta) {
	for _, s := range m {
		if s != nil {
			s.SetPageMeta(ctx, meta)
		}
	}
}
