package client

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"travelblog/internal/models"
)

// DefaultDebounce — пауза после последнего ввода перед запросом.
const DefaultDebounce = 300 * time.Millisecond

type SearchFunc func(ctx context.Context, q string) ([]*models.Article, error)

// Result — то, что показывает виджет. Cleared означает «скрыть выдачу».
type Result struct {
	Query    string
	Articles []*models.Article
	Err      error
	Cleared  bool
}

// Searcher — поиск с debounce. Каждый новый запрос отменяет предыдущий,
// а в deliver попадают только результаты последнего выпущенного запроса.
// deliver вызывается последовательно и не должен синхронно звать методы Searcher.
type Searcher struct {
	search  SearchFunc
	deliver func(Result)
	delay   time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending uint64 // поколение таймера; старый таймер при срабатывании ничего не делает
	seq     uint64
	cancel  context.CancelFunc
	closed  bool

	latest    atomic.Uint64
	deliverMu sync.Mutex
	wg        sync.WaitGroup
}

func NewSearcher(search SearchFunc, deliver func(Result), delay time.Duration) *Searcher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Searcher{search: search, deliver: deliver, delay: delay}
}

// Update — изменение поля ввода: перезапускает таймер.
func (s *Searcher) Update(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		s.clear()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	gen := s.resetTimerLocked()
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || gen != s.pending {
			return
		}
		s.timer = nil
		s.issueLocked(q)
	})
}

// Submit — Enter: ищет сразу, минуя debounce.
func (s *Searcher) Submit(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		s.clear()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.resetTimerLocked()
	s.issueLocked(q)
}

// Dismiss — Escape или клик вне виджета.
func (s *Searcher) Dismiss() {
	s.clear()
}

// Close отменяет всё и ждёт завершения запросов. После Close ничего не доставляется.
func (s *Searcher) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.resetTimerLocked()
		s.invalidateLocked()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Searcher) clear() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.resetTimerLocked()
	id := s.invalidateLocked()
	s.mu.Unlock()

	s.emit(id, Result{Cleared: true})
}

func (s *Searcher) resetTimerLocked() uint64 {
	s.pending++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return s.pending
}

// invalidateLocked отменяет запрос в полёте и делает все выданные результаты устаревшими.
func (s *Searcher) invalidateLocked() uint64 {
	s.seq++
	s.latest.Store(s.seq)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return s.seq
}

func (s *Searcher) issueLocked(q string) {
	id := s.invalidateLocked()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		articles, err := s.search(ctx, q)
		if ctx.Err() != nil {
			return
		}
		s.emit(id, Result{Query: q, Articles: articles, Err: err})
	}()
}

func (s *Searcher) emit(id uint64, r Result) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.latest.Load() != id {
		return
	}
	s.deliver(r)
}
