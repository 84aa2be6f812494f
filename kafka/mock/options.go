package mockkafka

import "time"

type Option func(*Client)

// WithMaxPollRecords caps the number of records a single Poll returns.
func WithMaxPollRecords(n int) Option {
	return func(c *Client) {
		c.maxPollRecords = n
	}
}

// WithPollDelay makes every Poll block for the given duration before
// returning, useful for exercising backpressure.
func WithPollDelay(d time.Duration) Option {
	return func(c *Client) {
		c.pollDelay = d
	}
}

// WithEmptyPollWait sets how long an empty Poll waits before returning.
func WithEmptyPollWait(d time.Duration) Option {
	return func(c *Client) {
		c.emptyPollWait = d
	}
}

// WithSendErrorFunc configures a function to determine Send errors.
func WithSendErrorFunc(fn func(topic string, key, value []byte) error) Option {
	return func(c *Client) {
		c.sendErr = fn
	}
}

// WithPollErrorFunc configures a function to determine Poll errors.
func WithPollErrorFunc(fn func() error) Option {
	return func(c *Client) {
		c.pollErr = fn
	}
}

// WithCommitErrorFunc configures a function to determine Commit errors.
func WithCommitErrorFunc(fn func() error) Option {
	return func(c *Client) {
		c.commitErr = fn
	}
}

// WithPingError makes Ping return the given error.
func WithPingError(err error) Option {
	return func(c *Client) {
		c.pingErr = err
	}
}
