package presence

import (
	"context"
	"time"

	"github.com/rafiq-app/rafiq/internal/group"
	"github.com/rafiq-app/rafiq/internal/groupstore"
	"github.com/rafiq-app/rafiq/internal/location"
	"go.uber.org/zap"
)

// Publisher keeps exactly one live member record for this device in the
// remote store while grouped: every fix from the location watch overwrites
// the record wholesale with fresh coordinates and timestamp.
type Publisher struct {
	store  groupstore.Store
	sess   group.Session
	loc    location.Provider
	opts   location.WatchOptions
	logger *zap.Logger
	cancel context.CancelFunc
}

// NewPublisher creates a presence publisher.
func NewPublisher(store groupstore.Store, sess group.Session, loc location.Provider, opts location.WatchOptions, logger *zap.Logger) *Publisher {
	return &Publisher{
		store:  store,
		sess:   sess,
		loc:    loc,
		opts:   opts,
		logger: logger,
	}
}

// Start begins location tracking. When the provider has no position
// (permission denied), tracking silently does not start; nothing retries.
func (p *Publisher) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	fixes, err := p.loc.Watch(ctx, p.opts)
	if err != nil {
		p.logger.Info("location tracking not started", zap.Error(err))
		return
	}

	// Seed with a one-shot fix so the first publish does not wait a full interval.
	if fix, err := p.loc.Current(ctx); err == nil {
		p.publish(ctx, fix)
	}

	go func() {
		for fix := range fixes {
			p.publish(ctx, fix)
		}
	}()
}

// Stop halts tracking.
func (p *Publisher) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
}

// publish overwrites this device's member record. Write failures are logged
// per attempt and never block the next scheduled sample.
func (p *Publisher) publish(ctx context.Context, fix location.Fix) {
	code := p.sess.GroupCode()
	if code == "" {
		return
	}
	member := group.Member{
		ID:         p.sess.MemberID(),
		Name:       p.sess.UserName(),
		Latitude:   fix.Coordinate.Latitude,
		Longitude:  fix.Coordinate.Longitude,
		LastUpdate: time.Now().UnixMilli(),
	}

	wctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := p.store.Write(wctx, groupstore.MemberPath(code, member.ID), member); err != nil {
		p.logger.Warn("presence publish failed", zap.String("code", code), zap.Error(err))
	}
}
