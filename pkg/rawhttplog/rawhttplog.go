// Package rawhttplog is a thin logrus façade. The engine logs through it
// at two points: a failed TCP connect and each redirect decision. TLS
// handshake failures, proxy dialing and websocket sessions do not log
// here. The teacher snapshot carries no
// logging dependency of its own; this is grounded on docker-compose's
// logrus usage, the pack's representative structured-logging choice.
package rawhttplog

import (
	"github.com/sirupsen/logrus"
)

// Logger is the package-wide logrus instance. Callers that need a
// differently configured logger (JSON formatter, custom level, a
// sub-process log file) can replace it wholesale; nothing here assumes a
// singleton beyond this default.
var Logger = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// WithFields is a small convenience wrapper so call sites read like
// rawhttplog.WithFields(logrus.Fields{...}).Warn(...) without importing
// logrus directly everywhere.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

// ConnectFailed logs a connection-establishment failure at warn level —
// the engine's connect step calls this before surfacing the error to the
// caller, so failed dials are visible even when the caller only checks
// the returned error's type.
func ConnectFailed(host string, port int, err error) {
	WithFields(logrus.Fields{"host": host, "port": port}).WithError(err).Warn("connect failed")
}

// RedirectFollowed logs an accepted redirect transition at debug level.
func RedirectFollowed(from, to string, times int) {
	WithFields(logrus.Fields{"from": from, "to": to, "times": times}).Debug("redirect followed")
}

// RedirectRejected logs a redirect the state machine refused to follow.
func RedirectRejected(target string, reason string) {
	WithFields(logrus.Fields{"target": target, "reason": reason}).Warn("redirect rejected")
}
