package session

import (
	"context"
	"encoding/json"

	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"github.com/nats-io/nats.go"
)

// Broadcaster 跨终端的会话变化信号
type Broadcaster interface {
	Publish(e Event) error
	Subscribe(fn func(Event)) (func(), error)
}

// NATSBroadcaster 基于 NATS 主题的广播
type NATSBroadcaster struct {
	nc      *nats.Conn
	subject string
}

func NewNATSBroadcaster(nc *nats.Conn) *NATSBroadcaster {
	return &NATSBroadcaster{nc: nc, subject: meta.SessionSubject}
}

func (b *NATSBroadcaster) Publish(e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.nc.Publish(b.subject, data)
}

func (b *NATSBroadcaster) Subscribe(fn func(Event)) (func(), error) {
	sub, err := b.nc.Subscribe(b.subject, func(msg *nats.Msg) {
		var e Event
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			logs.Debugf("skip malformed session event: %v\n", err)
			return
		}
		fn(e)
	})
	if err != nil {
		return nil, err
	}
	return func() {
		_ = sub.Unsubscribe()
	}, nil
}

// Listen 把其他终端的会话变化转发给本地订阅者，直到 ctx 结束
func (s *Store) Listen(ctx context.Context, b Broadcaster) error {
	unsubscribe, err := b.Subscribe(func(e Event) {
		if e.Origin == s.origin {
			return
		}
		s.notify(e)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	unsubscribe()
	return nil
}
