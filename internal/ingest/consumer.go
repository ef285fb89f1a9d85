// Package ingest subscribes to route updates published by the route
// inference pipeline and writes them to the backing store. It gives the
// out-of-band pipeline a push path; the HTTP set_route endpoint remains
// the pull path for manual corrections.
package ingest

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"flight_routes/internal/routes"
)

// writeTimeout bounds the store write for one update so a stalled store
// cannot back up the NATS subscription indefinitely.
const writeTimeout = 5 * time.Second

// Consumer applies RouteRecord updates from a NATS subject to the store.
type Consumer struct {
	nc       *nats.Conn
	sub      *nats.Subscription
	resolver *routes.Resolver
}

// Connect dials the NATS server and returns a consumer ready to subscribe.
func Connect(url string, resolver *routes.Resolver) (*Consumer, error) {
	nc, err := nats.Connect(url,
		nats.Timeout(5*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Consumer{nc: nc, resolver: resolver}, nil
}

// Subscribe starts consuming route updates from the given subject.
func (c *Consumer) Subscribe(subject string) error {
	sub, err := c.nc.Subscribe(subject, c.handleMessage)
	if err != nil {
		return err
	}
	c.sub = sub
	log.Printf("Route ingest subscribed to %q", subject)
	return nil
}

// handleMessage applies one published update. Payloads that do not decode
// into a RouteRecord with a valid callsign are logged and dropped; a
// poisoned message must not take down the subscription.
func (c *Consumer) handleMessage(msg *nats.Msg) {
	var rec routes.RouteRecord
	if err := json.Unmarshal(msg.Data, &rec); err != nil {
		log.Printf("Route ingest: dropping undecodable update: %v", err)
		return
	}
	if !routes.ValidCallsign(rec.Callsign) {
		log.Printf("Route ingest: dropping update with invalid callsign %q", rec.Callsign)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := c.resolver.SetRoute(ctx, rec); err != nil {
		log.Printf("Route ingest: store write for %s failed: %v", rec.Callsign, err)
	}
}

// Close drains the subscription and closes the connection.
func (c *Consumer) Close() {
	if c.sub != nil {
		_ = c.sub.Drain()
	}
	c.nc.Close()
}
