package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wfunc/pet-game/internal/game/pet"
)

// Sink 互动事件的接收方
// Publish 尽力投递，不返回错误，也不能阻塞调用方
type Sink interface {
	Publish(ctx context.Context, event pet.Event)
}

// Nop 丢弃所有事件
type Nop struct{}

// Publish 实现 Sink
func (Nop) Publish(context.Context, pet.Event) {}

// LogSink 把事件写入日志
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink 创建日志Sink
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Publish 实现 Sink
func (s *LogSink) Publish(_ context.Context, e pet.Event) {
	s.logger.Info("pet_event",
		zap.String("event_id", e.ID),
		zap.String("pet_id", e.PetID),
		zap.String("owner", e.Owner),
		zap.String("action", e.Name),
		zap.Uint8("hunger", uint8(e.State.Hunger)),
		zap.Uint8("strength", uint8(e.State.Strength)),
		zap.Uint8("happiness", uint8(e.State.Happiness)),
		zap.Uint8("energy", uint8(e.State.Energy)),
	)
}

// Multi 依次投递给多个Sink
type Multi []Sink

// Publish 实现 Sink
func (m Multi) Publish(ctx context.Context, e pet.Event) {
	for _, s := range m {
		if s != nil {
			s.Publish(ctx, e)
		}
	}
}

// Recorder 记录收到的事件，用于测试和调试
type Recorder struct {
	mu     sync.Mutex
	events []pet.Event
}

// Publish 实现 Sink
func (r *Recorder) Publish(_ context.Context, e pet.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events 返回已记录事件的副本
func (r *Recorder) Events() []pet.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]pet.Event, len(r.events))
	copy(out, r.events)
	return out
}
