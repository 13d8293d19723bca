// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

type LoggerInterface interface {
	Errorf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	Fatalf(string, ...interface{})
	Error(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Debug(...interface{})
	Fatal(...interface{})
	Sync() error
	Security() SecurityLoggerInterface
}

// SecurityLoggerInterface emits security relevant events on a dedicated logger
// so that they can be routed separately from operational logs.
type SecurityLoggerInterface interface {
	SystemStartup()
	SystemShutdown()
	AuthzSuccess(principal, resource string)
	AuthzFailure(principal, resource string)
	AdminAction(principal, action, resource string)
	DataIntegrity(resource, detail string)
}
