package middleware

import (
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// Recover runs fn and converts a panic into an error, so one broken
// handler cannot take down the message loop. The stack is logged once
// here; callers only see the error.
func Recover(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Recovered panic in command handler")
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return fn()
}
