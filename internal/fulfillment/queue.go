package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// ErrQueueClosed очередь остановлена и больше не принимает задачи
var ErrQueueClosed = errors.New("fulfillment queue closed")

// Handler обрабатывает одну задачу исполнения
type Handler func(ctx context.Context, req domain.FulfillmentRequest) error

// Queue асинхронная очередь задач исполнения
type Queue interface {
	Enqueue(ctx context.Context, req domain.FulfillmentRequest) error
}

// WorkerPool очередь в памяти процесса: буферизованный канал и N обработчиков
type WorkerPool struct {
	tasks   chan domain.FulfillmentRequest
	handler Handler
	workers int
	log     *logger.Logger

	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	started sync.Once
}

// NewWorkerPool создает пул обработчиков
func NewWorkerPool(workers, size int, handler Handler, log *logger.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if size < 0 {
		size = 0
	}
	return &WorkerPool{
		tasks:   make(chan domain.FulfillmentRequest, size),
		handler: handler,
		workers: workers,
		log:     log,
	}
}

// Start запускает обработчики; ctx передается в каждую задачу
func (p *WorkerPool) Start(ctx context.Context) {
	p.started.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.work(ctx, i)
		}
		p.log.Infow("Fulfillment worker pool started", "workers", p.workers, "capacity", cap(p.tasks))
	})
}

func (p *WorkerPool) work(ctx context.Context, id int) {
	defer p.wg.Done()
	for req := range p.tasks {
		p.run(ctx, id, req)
	}
}

func (p *WorkerPool) run(ctx context.Context, id int, req domain.FulfillmentRequest) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorw("Fulfillment task panicked", "worker", id, "orderID", req.OrderID, "panic", fmt.Sprint(r))
		}
	}()
	if err := p.handler(ctx, req); err != nil {
		p.log.Debugw("Fulfillment task finished with error", "worker", id, "orderID", req.OrderID, "error", err)
	}
}

// Enqueue ставит задачу в очередь; блокируется, пока очередь заполнена
func (p *WorkerPool) Enqueue(ctx context.Context, req domain.FulfillmentRequest) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrQueueClosed
	}

	select {
	case p.tasks <- req:
		p.log.Debugw("Fulfillment task enqueued", "orderID", req.OrderID, "depth", len(p.tasks))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("enqueue order %s: %w", req.OrderID, ctx.Err())
	}
}

// Depth возвращает число задач, ожидающих обработки
func (p *WorkerPool) Depth() int {
	return len(p.tasks)
}

// Stop закрывает очередь и ждет завершения уже принятых задач
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Info("Fulfillment worker pool stopped")
}
