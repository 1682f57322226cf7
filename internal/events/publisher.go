// Package events publishes pipeline run notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	ChannelScriptParsed      = "events.script.parsed"
	ChannelScheduleGenerated = "events.schedule.generated"
)

type BaseEvent struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Source:    "dubplan",
		Version:   "1.0",
	}
}

type ScriptParsedEvent struct {
	BaseEvent
	RunID       string `json:"run_id"`
	Fingerprint string `json:"fingerprint"`
	Lines       int    `json:"lines"`
	Segments    int    `json:"segments"`
	Speakers    int    `json:"speakers"`
}

type ScheduleGeneratedEvent struct {
	BaseEvent
	RunID      string `json:"run_id,omitempty"`
	Assigned   int    `json:"assigned"`
	Unassigned []int  `json:"unassigned"`
}

type Publisher interface {
	PublishScriptParsed(ctx context.Context, e ScriptParsedEvent) error
	PublishScheduleGenerated(ctx context.Context, e ScheduleGeneratedEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishScriptParsed(context.Context, ScriptParsedEvent) error { return nil }

func (NopPublisher) PublishScheduleGenerated(context.Context, ScheduleGeneratedEvent) error {
	return nil
}

// RedisPublisher publishes events as JSON on Redis pub/sub channels.
type RedisPublisher struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRedisPublisher(client *redis.Client, logger zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

// NewRedisPublisherFromURL connects to the given redis:// URL and checks the connection.
func NewRedisPublisherFromURL(ctx context.Context, url string, logger zerolog.Logger) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisPublisher(client, logger), nil
}

func (p *RedisPublisher) PublishScriptParsed(ctx context.Context, e ScriptParsedEvent) error {
	e.BaseEvent = NewBaseEvent("script.parsed")
	return p.publish(ctx, ChannelScriptParsed, e)
}

func (p *RedisPublisher) PublishScheduleGenerated(ctx context.Context, e ScheduleGeneratedEvent) error {
	e.BaseEvent = NewBaseEvent("schedule.generated")
	return p.publish(ctx, ChannelScheduleGenerated, e)
}

func (p *RedisPublisher) publish(ctx context.Context, channel string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		p.logger.Error().Err(err).Str("channel", channel).Msg("failed to publish event")
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	p.logger.Debug().Str("channel", channel).Int("payload_size", len(data)).Msg("event published")
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
