package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// successIdx - индекс, который возвращается в случае успешного закрытия всех ресурсов
	successIdx = -1
)

// Closer обеспечивает потокобезопасное закрытие ресурсов.
type Closer struct {
	items         []item
	mu            sync.Mutex
	once          sync.Once
	forcedTimeout time.Duration
}

// Func — сигнатура функции закрытия ресурса.
type Func func(ctx context.Context) error

type item struct {
	name string
	fn   Func
}

// NewCloser создает новый экземпляр Closer.
// forcedTimeout — время, отводимое на принудительное закрытие всех ресурсов при таймауте контекста в Close.
func NewCloser(forcedTimeout time.Duration) *Closer {
	const (
		defaultForcedTimeout = 2 * time.Second
	)

	if forcedTimeout == 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{
		forcedTimeout: forcedTimeout,
	}
}

// Add добавляет именованную функцию в список закрытия.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item{name: name, fn: f})
}

// AddSimple регистрирует функцию закрытия, не принимающую контекст (Close() error у клиентов).
func (c *Closer) AddSimple(name string, f func() error) {
	c.Add(name, func(context.Context) error { return f() })
}

// Close последовательно запускает закрытие всех зарегистрированных функций (LIFO).
// Если контекст отменяется до завершения, оставшиеся функции закрываются принудительно.
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		items := c.items
		c.mu.Unlock()

		stopIdx, errors := c.gracefulClose(ctx, items)
		if stopIdx == successIdx {
			if len(errors) > 0 {
				err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(errors, "\n"))
			}

			return
		}

		// Незакрытые ресурсы закрываются принудительно
		remaining := items[:stopIdx+1]
		forcedErrs := c.forcedClose(remaining)
		errors = append(errors, forcedErrs...)

		err = fmt.Errorf(
			"shutdown interrupted after %d/%d funcs:\n%s",
			len(items)-1-stopIdx,
			len(items),
			strings.Join(errors, "\n"),
		)
	})

	return err
}

// gracefulClose закрывает ресурсы в порядке LIFO.
// При отмене контекста возвращает индекс ресурса, закрытие которого не дождались.
func (c *Closer) gracefulClose(ctx context.Context, items []item) (int, []string) {
	var errors []string
	for i := len(items) - 1; i >= 0; i-- {
		var (
			it   = items[i]
			done = make(chan error, 1)
		)

		go func() {
			done <- it.fn(ctx)
		}()

		select {
		case err := <-done:
			if err != nil {
				errors = append(errors, fmt.Sprintf("[!] %s: %v", it.name, err))
			}
		case <-ctx.Done():
			return i, errors
		}
	}

	return successIdx, errors
}

// forcedClose параллельно запускает все оставшиеся функции закрытия с собственным таймаутом.
func (c *Closer) forcedClose(items []item) []string {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		errors []string
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, it := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := it.fn(ctx); err != nil {
				mu.Lock()
				errors = append(errors, fmt.Sprintf("[FORCED] %s: %v", it.name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errors
}
