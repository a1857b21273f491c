package goroutine

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/skladhub/admin-backend/internal/logger"
)

// SafeGo запускает фоновую горутину с перехватом panic.
// Побочные эффекты (аудит, уведомления) не должны ронять процесс.
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if logger.Log != nil {
					logger.Log.WithFields(logrus.Fields{
						"panic": r,
						"stack": string(debug.Stack()),
					}).Error("goroutine: перехвачен panic")
				}
			}
		}()
		fn()
	}()
}
