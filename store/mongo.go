// Package store persists events and users in MongoDB and translates driver
// failures into models.Error kinds.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/description"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/phillip/helping-hands-go/models"
)

const (
	eventsCollection = "events"
	usersCollection  = "users"
)

// ConnState mirrors the driver's view of the deployment.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateConnecting:
		return "connecting"
	default:
		return "disconnected"
	}
}

// Options configures Open.
type Options struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
	ConnectTries   uint
	Logger         *slog.Logger
}

// Mongo owns the client and its connection state. Topology changes reported
// by the driver keep the state current, so IsReady never blocks on the network.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	state  atomic.Int32
	tries  uint
	log    *slog.Logger
}

// Open builds the client. It only fails on invalid options; reachability is
// checked by WaitReady.
func Open(opts Options) (*Mongo, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ConnectTries == 0 {
		opts.ConnectTries = 5
	}

	m := &Mongo{
		tries: opts.ConnectTries,
		log:   opts.Logger,
	}
	m.setState(StateConnecting)

	monitor := &event.ServerMonitor{
		TopologyDescriptionChanged: m.observeTopology,
	}

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetServerMonitor(monitor)
	if opts.ConnectTimeout > 0 {
		clientOpts.SetServerSelectionTimeout(opts.ConnectTimeout)
		clientOpts.SetConnectTimeout(opts.ConnectTimeout)
	}
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(opts.MaxPoolSize)
	}

	client, err := mongo.Connect(context.Background(), clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	m.client = client
	m.db = client.Database(opts.Database)
	return m, nil
}

// WaitReady pings the primary with exponential backoff until it answers or
// the configured number of tries is exhausted.
func (m *Mongo) WaitReady(ctx context.Context) error {
	ping := func() (struct{}, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return struct{}{}, m.client.Ping(pingCtx, readpref.Primary())
	}

	_, err := backoff.Retry(ctx, ping,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(m.tries),
		backoff.WithNotify(func(err error, next time.Duration) {
			m.log.Warn("mongodb not reachable, retrying",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", next),
			)
		}),
	)
	if err != nil {
		m.setState(StateDisconnected)
		return mapError("ping", err)
	}
	m.setState(StateConnected)
	m.log.Info("mongodb connected", slog.String("database", m.db.Name()))
	return nil
}

// EnsureIndexes creates the indexes the queries rely on. It is idempotent.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.db.Collection(eventsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "eventDate", Value: 1}}},
		{Keys: bson.D{{Key: "eventType", Value: 1}}},
		{Keys: bson.D{{Key: "creator.uid", Value: 1}}},
		{Keys: bson.D{{Key: "participants.uid", Value: 1}}},
	})
	if err != nil {
		return mapError("create event indexes", err)
	}

	_, err = m.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "uid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return mapError("create user indexes", err)
	}
	return nil
}

// observeTopology derives the connection state from the driver's topology
// description. The deployment is ready while any member accepts writes, so a
// failing secondary does not take the store offline.
func (m *Mongo) observeTopology(e *event.TopologyDescriptionChangedEvent) {
	next := topologyState(e.NewDescription)
	if next == StateConnecting && m.State() != StateConnecting {
		next = StateDisconnected
	}

	prev := ConnState(m.state.Swap(int32(next)))
	if prev == StateConnected && next != StateConnected {
		m.log.Warn("mongodb has no writable server", slog.String("topology", e.NewDescription.String()))
	}
	if prev != StateConnected && next == StateConnected {
		m.log.Info("mongodb writable server available")
	}
}

// topologyState reports StateConnected when a writable server is known,
// StateConnecting while no member has been checked yet, and
// StateDisconnected otherwise.
func topologyState(t description.Topology) ConnState {
	checked := false
	for _, s := range t.Servers {
		switch s.Kind {
		case description.Standalone, description.RSPrimary, description.Mongos, description.LoadBalancer:
			return StateConnected
		}
		if s.Kind != 0 || s.LastError != nil {
			checked = true
		}
	}
	if checked {
		return StateDisconnected
	}
	return StateConnecting
}

func (m *Mongo) setState(s ConnState) { m.state.Store(int32(s)) }

func (m *Mongo) State() ConnState { return ConnState(m.state.Load()) }

// IsReady reports whether a writable server is currently known.
func (m *Mongo) IsReady() bool { return m.State() == StateConnected }

func (m *Mongo) DatabaseName() string { return m.db.Name() }

// guard fails fast while the driver reports the deployment as down.
func (m *Mongo) guard() error {
	if m.State() == StateDisconnected {
		return models.NewUnavailableError(errNotReady)
	}
	return nil
}

func (m *Mongo) Events() *EventRepo {
	return &EventRepo{conn: m, col: m.db.Collection(eventsCollection)}
}

func (m *Mongo) Users() *UserRepo {
	return &UserRepo{conn: m, col: m.db.Collection(usersCollection)}
}

func (m *Mongo) Close(ctx context.Context) error {
	m.setState(StateDisconnected)
	return m.client.Disconnect(ctx)
}
