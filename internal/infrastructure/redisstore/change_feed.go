package redisstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
)

func feedChannel(table, orgID string) string { return table + ":org:" + orgID }

// ChangeFeed publishes tenant row changes on Redis pub/sub.
type ChangeFeed struct {
	rdb    *redis.Client
	logger *logrus.Logger
}

func NewChangeFeed(rdb *redis.Client, logger *logrus.Logger) *ChangeFeed {
	return &ChangeFeed{rdb: rdb, logger: logger}
}

func (f *ChangeFeed) Publish(ctx context.Context, evt entity.ChangeEvent) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, feedChannel(evt.Table, evt.OrgID), b).Err()
}

// Subscribe listens to issue changes of one tenant.
func (f *ChangeFeed) Subscribe(ctx context.Context, orgID string) (repository.ChangeSubscription, error) {
	ps := f.rdb.Subscribe(ctx, feedChannel("issues", orgID))
	// Receive blocks until the subscription is confirmed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	sub := &subscription{ps: ps, out: make(chan entity.ChangeEvent, 16), done: make(chan struct{})}
	go sub.pump(f.logger)
	return sub, nil
}

type subscription struct {
	ps   *redis.PubSub
	out  chan entity.ChangeEvent
	done chan struct{}
	once sync.Once
}

func (s *subscription) pump(logger *logrus.Logger) {
	defer close(s.out)
	for msg := range s.ps.Channel() {
		var evt entity.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
			if logger != nil {
				logger.WithError(err).WithField("channel", msg.Channel).Warn("dropping malformed change event")
			}
			continue
		}
		select {
		case s.out <- evt:
		case <-s.done:
			return
		}
	}
}

func (s *subscription) Events() <-chan entity.ChangeEvent { return s.out }

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

var _ repository.ChangeFeed = (*ChangeFeed)(nil)
