// Package goroutine keeps a panicking background task from taking the process down.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// SafeGo launches fn in a goroutine and logs a panic with its stack trace.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("goroutine panicked",
					"goroutine", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn()
	}()
}

// Run calls fn synchronously and turns a panic into an error, so one bad item
// in a batch is reported like any other per-item failure.
func Run(log logger.Interface, name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("task panicked",
				"task", name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("%s panicked: %v", name, r)
		}
	}()
	return fn()
}
