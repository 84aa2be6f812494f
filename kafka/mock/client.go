// Package mockkafka provides an in-memory kafka.Client for tests: scripted
// record queues, explicit committed-offset tracking and error injection.
package mockkafka

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kbridge-io/kbridge/kafka"
)

var _ kafka.Client = (*Client)(nil)

// ProducedRecord represents a record that was sent via the mock producer.
type ProducedRecord struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers []kafka.Header
}

type Client struct {
	mu sync.Mutex

	recordQueues   map[kafka.TopicPartition][]kafka.ConsumerRecord
	queuePositions map[kafka.TopicPartition]int

	producedRecords []ProducedRecord

	committedOffsets map[kafka.TopicPartition]kafka.OffsetCommit
	commitHistory    map[kafka.TopicPartition][]int64

	subscriptions []string
	subscribed    bool

	maxPollRecords int
	pollDelay      time.Duration
	emptyPollWait  time.Duration

	sendErr   func(topic string, key, value []byte) error
	pollErr   func() error
	commitErr func() error
	pingErr   error

	closed bool
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		recordQueues:     make(map[kafka.TopicPartition][]kafka.ConsumerRecord),
		queuePositions:   make(map[kafka.TopicPartition]int),
		producedRecords:  make([]ProducedRecord, 0),
		committedOffsets: make(map[kafka.TopicPartition]kafka.OffsetCommit),
		commitHistory:    make(map[kafka.TopicPartition][]int64),
		maxPollRecords:   10,
		emptyPollWait:    time.Millisecond,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AddRecords appends records to a partition's queue. Topic, partition and
// offset are assigned by the mock: offsets are sequential per partition in
// arrival order, starting at 0.
func (c *Client) AddRecords(topic string, partition int32, records ...kafka.ConsumerRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tp := kafka.TopicPartition{Topic: topic, Partition: partition}
	queue := c.recordQueues[tp]
	for _, rec := range records {
		rec.Topic = topic
		rec.Partition = partition
		rec.Offset = int64(len(queue))
		queue = append(queue, rec)
	}
	c.recordQueues[tp] = queue
}

// Subscribe is idempotent, matching broker clients that treat a repeated
// subscription to the same topic set as a no-op.
func (c *Client) Subscribe(topics []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subscribed {
		return nil
	}

	c.subscriptions = topics
	c.subscribed = true
	return nil
}

// Poll returns up to maxPollRecords across partitions, preserving each
// partition's queue order. When no records are available it waits the
// configured empty-poll window before returning an empty map, mimicking a
// real poll's max wait.
func (c *Client) Poll(ctx context.Context) (map[kafka.TopicPartition][]kafka.ConsumerRecord, error) {
	if c.pollDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollDelay):
		}
	}

	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return nil, kafka.ErrClientClosed
	}

	if c.pollErr != nil {
		if err := c.pollErr(); err != nil {
			c.mu.Unlock()
			return nil, err
		}
	}

	byPartition := make(map[kafka.TopicPartition][]kafka.ConsumerRecord)
	count := 0
	for _, tp := range c.subscribedPartitionsLocked() {
		queue := c.recordQueues[tp]
		pos := c.queuePositions[tp]

		for pos < len(queue) && count < c.maxPollRecords {
			byPartition[tp] = append(byPartition[tp], queue[pos])
			pos++
			count++
		}
		c.queuePositions[tp] = pos

		if count >= c.maxPollRecords {
			break
		}
	}

	c.mu.Unlock()

	if count == 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.emptyPollWait):
		}
	}

	return byPartition, nil
}

// subscribedPartitionsLocked returns the partitions of subscribed topics in
// a stable order. Callers must hold mu.
func (c *Client) subscribedPartitionsLocked() []kafka.TopicPartition {
	var tps []kafka.TopicPartition
	for tp := range c.recordQueues {
		for _, topic := range c.subscriptions {
			if tp.Topic == topic {
				tps = append(tps, tp)
				break
			}
		}
	}

	sort.Slice(tps, func(i, j int) bool {
		if tps[i].Topic != tps[j].Topic {
			return tps[i].Topic < tps[j].Topic
		}
		return tps[i].Partition < tps[j].Partition
	})
	return tps
}

func (c *Client) Commit(ctx context.Context, offsets map[kafka.TopicPartition]kafka.OffsetCommit) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if c.commitErr != nil {
		if err := c.commitErr(); err != nil {
			return err
		}
	}

	for tp, commit := range offsets {
		c.committedOffsets[tp] = commit
		c.commitHistory[tp] = append(c.commitHistory[tp], commit.Offset)
	}

	return nil
}

// Send produces a record to the specified topic.
// The record is stored internally and can be verified using ProducedRecords().
func (c *Client) Send(ctx context.Context, topic string, key, value []byte, headers []kafka.Header) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sendErr != nil {
		if err := c.sendErr(topic, key, value); err != nil {
			return err
		}
	}

	headersCopy := make([]kafka.Header, len(headers))
	for i, h := range headers {
		vCopy := make([]byte, len(h.Value))
		copy(vCopy, h.Value)
		headersCopy[i] = kafka.Header{Key: h.Key, Value: vCopy}
	}

	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	c.producedRecords = append(
		c.producedRecords, ProducedRecord{
			Topic:   topic,
			Key:     keyCopy,
			Value:   valueCopy,
			Headers: headersCopy,
		},
	)

	return nil
}

// Flush is a no-op for the mock client since Send is synchronous.
func (c *Client) Flush(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (c *Client) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pingErr
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// RestartSession simulates a consumer restart: queue positions rewind to the
// last committed offset per partition, so uncommitted records are delivered
// again on the next poll.
func (c *Client) RestartSession() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queuePositions = make(map[kafka.TopicPartition]int)
	for tp, commit := range c.committedOffsets {
		c.queuePositions[tp] = int(commit.Offset) + 1
	}
	c.subscribed = false
	c.closed = false
}

// SetPollErrorFunc configures a function to determine Poll errors.
func (c *Client) SetPollErrorFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pollErr = fn
}

// SetCommitErrorFunc configures a function to determine Commit errors.
func (c *Client) SetCommitErrorFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commitErr = fn
}

// ProducedRecords returns a copy of all records that have been sent via Send.
func (c *Client) ProducedRecords() []ProducedRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]ProducedRecord, len(c.producedRecords))
	copy(result, c.producedRecords)
	return result
}

// CommittedOffset returns the latest committed offset for a topic-partition.
// Returns (OffsetCommit{}, false) if nothing was committed.
func (c *Client) CommittedOffset(tp kafka.TopicPartition) (kafka.OffsetCommit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	commit, ok := c.committedOffsets[tp]
	return commit, ok
}

// CommitHistory returns every offset committed for a topic-partition in
// commit order.
func (c *Client) CommitHistory(tp kafka.TopicPartition) []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	history := make([]int64, len(c.commitHistory[tp]))
	copy(history, c.commitHistory[tp])
	return history
}

// Subscriptions returns the topics the client is subscribed to.
func (c *Client) Subscriptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]string, len(c.subscriptions))
	copy(result, c.subscriptions)
	return result
}

// IsClosed returns whether Close has been called.
func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
