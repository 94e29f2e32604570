// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package events publishes accepted votes to Kafka for downstream consumers
// such as analytics or live scoreboards.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"votebox/internal/models"
)

// TypeVoteAccepted is the event type emitted after a vote commits.
const TypeVoteAccepted = "vote.accepted"

// VoteEvent is the message body written for every accepted vote. It carries
// the item's counters as of the commit so consumers need not read them back.
type VoteEvent struct {
	Type       string           `json:"type"`
	VoteID     uuid.UUID        `json:"vote_id"`
	ItemID     uuid.UUID        `json:"item_id"`
	Direction  models.Direction `json:"direction"`
	SessionID  *string          `json:"session_id"`
	UserID     *string          `json:"user_id"`
	Upvotes    int              `json:"upvotes"`
	Downvotes  int              `json:"downvotes"`
	Score      int              `json:"score"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewVoteEvent builds the event for a vote and the item it updated.
func NewVoteEvent(vote *models.Vote, item *models.Item) VoteEvent {
	return VoteEvent{
		Type:       TypeVoteAccepted,
		VoteID:     vote.ID,
		ItemID:     vote.ItemID,
		Direction:  vote.Direction,
		SessionID:  vote.SessionID,
		UserID:     vote.UserID,
		Upvotes:    item.Upvotes,
		Downvotes:  item.Downvotes,
		Score:      item.Score,
		OccurredAt: vote.CreatedAt,
	}
}

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes vote events to a topic. Messages are keyed by item
// id so every event for one item lands on the same partition in order.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
// Writes are asynchronous: PublishVote only enqueues the message and
// delivery failures are reported through logCompletion. Batches wait for all
// in-sync replicas and are snappy compressed. Close flushes what is queued.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  5,
		Compression:  kafka.Snappy,
		Async:        true,
		Completion:   logCompletion,
	}}
}

// logCompletion is called by the writer once a batch is delivered or has
// exhausted its retries.
func logCompletion(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	slog.Warn("vote events dropped", "count", len(messages), "error", err)
}

// PublishVote queues a vote.accepted event for vote and its updated item.
func (p *KafkaPublisher) PublishVote(ctx context.Context, vote *models.Vote, item *models.Item) error {
	msg, err := voteMessage(vote, item)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write vote event: %w", err)
	}
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}
	return nil
}

func voteMessage(vote *models.Vote, item *models.Item) (kafka.Message, error) {
	body, err := json.Marshal(NewVoteEvent(vote, item))
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal vote event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(vote.ItemID.String()),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(TypeVoteAccepted)},
		},
	}, nil
}
