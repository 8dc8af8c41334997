package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fiootv/comms-gateway/internal/dispatcher"
	"github.com/fiootv/comms-gateway/internal/kafka"
	"github.com/fiootv/comms-gateway/internal/metrics"
	"github.com/fiootv/comms-gateway/internal/model"
	"github.com/fiootv/comms-gateway/internal/repository"
)

// Sender:
// - fetches envelopes from the channel's Kafka topic,
// - dispatches messages via delivery providers,
// - batches conversation status updates atomically.
type Sender struct {
	// Dependencies
	DB            *sqlx.DB
	Consumer      *kafka.Consumer
	Conversations repository.ConversationsRepository
	Dispatch      *dispatcher.Dispatcher

	// Behavior
	Channel   model.Channel // topic-bound worker
	Workers   int           // number of goroutines processing messages
	BatchSize int           // max buffered updates per flush (items)
	BatchWait time.Duration // max time to wait before flush
}

// NewSender builds a worker with sane defaults.
func NewSender(
	db *sqlx.DB,
	consumer *kafka.Consumer,
	convsRepo repository.ConversationsRepository,
	dispatch *dispatcher.Dispatcher,
	channel model.Channel,
) *Sender {
	return &Sender{
		DB:            db,
		Consumer:      consumer,
		Conversations: convsRepo,
		Dispatch:      dispatch,
		Channel:       channel,
		Workers:       32,
		BatchSize:     200,
		BatchWait:     300 * time.Millisecond,
	}
}

// Run starts the worker and blocks until ctx is cancelled.
func (w *Sender) Run(ctx context.Context) error {
	if !w.Channel.Valid() {
		return errors.New("sender: invalid channel")
	}
	if w.Workers <= 0 {
		w.Workers = 32
	}
	if w.BatchSize <= 0 {
		w.BatchSize = 200
	}
	if w.BatchWait <= 0 {
		w.BatchWait = 300 * time.Millisecond
	}

	// Channel for worker results → batch writer
	updates := make(chan updateItem, w.BatchSize*2)
	defer close(updates)

	// Start batch writer
	go w.runBatchWriter(ctx, updates)

	// Fetch loop → fan-out to processors
	msgCh := make(chan kafka.Message, w.Workers*2)

	// Fetcher goroutine
	go func() {
		defer close(msgCh)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				m, err := w.Consumer.Fetch(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("[sender] kafka fetch err: %v", err)
					time.Sleep(200 * time.Millisecond)
					continue
				}
				msgCh <- m
			}
		}
	}()

	// Start processors
	for i := 0; i < w.Workers; i++ {
		go w.runProcessor(ctx, msgCh, updates)
	}

	// Block until shutdown
	<-ctx.Done()
	return nil
}

type updateItem struct {
	id     string
	status model.ConversationStatus // sent | failed
}

// runProcessor parses envelopes, dispatches, emits updates, commits Kafka.
func (w *Sender) runProcessor(ctx context.Context, in <-chan kafka.Message, out chan<- updateItem) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				return
			}
			w.processOne(ctx, m, out)
		}
	}
}

func (w *Sender) processOne(ctx context.Context, m kafka.Message, out chan<- updateItem) {
	// Parse envelope: { id, agent_id, message:{channel,to,subject,body,customer_id} }
	var env model.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil || env.ID == "" {
		_ = w.Consumer.Commit(ctx, m) // poison → commit, skip
		if err != nil {
			log.Printf("[sender] bad envelope json: %v", err)
		} else {
			log.Printf("[sender] envelope missing id")
		}
		return
	}

	// Normalize channel with worker lane if missing
	if !env.Message.Channel.Valid() {
		env.Message.Channel = w.Channel
	}

	if err := w.Dispatch.Send(ctx, env.Message); err == nil {
		metrics.OutboundMessagesTotal.WithLabelValues("sent", env.Message.Channel.String()).Inc()
		out <- updateItem{id: env.ID, status: model.StatusSent}
	} else {
		log.Printf("[sender:%s] dispatch failed id=%s: %v", w.Channel, env.ID, err)
		metrics.OutboundMessagesTotal.WithLabelValues("failed", env.Message.Channel.String()).Inc()
		out <- updateItem{id: env.ID, status: model.StatusFailed}
	}

	// Always commit (at-least-once; status updates are idempotent)
	if err := w.Consumer.Commit(ctx, m); err != nil {
		log.Printf("[sender] commit err: %v", err)
	}
}

// runBatchWriter does size/time-based flush of conversation status updates.
func (w *Sender) runBatchWriter(ctx context.Context, in <-chan updateItem) {
	tick := time.NewTicker(w.BatchWait)
	defer tick.Stop()

	var sentIDs, failedIDs []string

	reset := func() {
		sentIDs = sentIDs[:0]
		failedIDs = failedIDs[:0]
	}

	flush := func() {
		if len(sentIDs) == 0 && len(failedIDs) == 0 {
			return
		}

		tx, err := w.DB.BeginTxx(ctx, nil)
		if err != nil {
			log.Printf("[sender] begin tx err: %v", err)
			reset()
			return
		}
		defer func() { _ = tx.Rollback() }()

		if len(sentIDs) > 0 {
			if err := w.Conversations.BatchUpdateStatus(ctx, tx, sentIDs, model.StatusSent); err != nil {
				log.Printf("[sender] batch update sent err: %v", err)
				return
			}
		}
		if len(failedIDs) > 0 {
			if err := w.Conversations.BatchUpdateStatus(ctx, tx, failedIDs, model.StatusFailed); err != nil {
				log.Printf("[sender] batch update failed err: %v", err)
				return
			}
		}

		if err := tx.Commit(); err != nil {
			log.Printf("[sender] tx commit err: %v", err)
			return
		}

		log.Printf("[sender:%s] flushed: sent=%d failed=%d", w.Channel, len(sentIDs), len(failedIDs))

		reset()
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case u, ok := <-in:
			if !ok {
				flush()
				return
			}
			if u.status == model.StatusSent {
				sentIDs = append(sentIDs, u.id)
			} else if u.status == model.StatusFailed {
				failedIDs = append(failedIDs, u.id)
			}

			if len(sentIDs)+len(failedIDs) >= w.BatchSize {
				flush()
			}

		case <-tick.C:
			flush()
		}
	}
}
