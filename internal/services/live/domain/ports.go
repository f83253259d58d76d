// Package domain holds the ports of the live subscriber
package domain

import (
	"context"
	"time"

	rekt "rektwatch/internal/services/rekt/domain"
)

// Subscription is an open live feed
type Subscription interface {
	Close()
}

// Source opens a standing subscription to the publisher's posts created at
// or after since. onPost is called from one goroutine in delivery order;
// onReady fires once when the feed is established.
type Source interface {
	Subscribe(ctx context.Context, since time.Time, onPost func(rekt.RawPost), onReady func()) (Subscription, error)
}

// SubscriberPort is what the collector drives
type SubscriberPort interface {
	Start(ctx context.Context) error
	Stop()
	Ready() bool
	Received() int64
}
