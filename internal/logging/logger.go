// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const securityLoggerName = "security"

// Logger is the operational logger, a sugared zap logger with an attached
// security event logger.
type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// SecurityLogger writes security events in a fixed shape, each event carries
// a type and a level independent of the operational log level.
type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) event(name string, level zapcore.Level, description string, fields ...zap.Field) {
	fields = append(fields,
		zap.String("type", "security"),
		zap.String("event", name),
		zap.String("appid", "tenant-access-service"),
		zap.Time("datetime", time.Now().UTC()),
	)

	if ce := s.l.Check(level, description); ce != nil {
		ce.Write(fields...)
	}
}

func (s *SecurityLogger) SystemStartup() {
	s.event("sys_startup", zapcore.WarnLevel, "tenant-access-service is starting")
}

func (s *SecurityLogger) SystemShutdown() {
	s.event("sys_shutdown", zapcore.WarnLevel, "tenant-access-service is shutting down")
}

func (s *SecurityLogger) AuthzSuccess(principal, resource string) {
	s.event(
		"authz_success:"+resource,
		zapcore.InfoLevel,
		"principal "+principal+" was granted access to "+resource,
		zap.String("principal", principal),
	)
}

func (s *SecurityLogger) AuthzFailure(principal, resource string) {
	s.event(
		"authz_fail:"+resource,
		zapcore.WarnLevel,
		"principal "+principal+" attempted to access "+resource+" without entitlement",
		zap.String("principal", principal),
	)
}

func (s *SecurityLogger) AdminAction(principal, action, resource string) {
	s.event(
		"admin_action:"+action,
		zapcore.WarnLevel,
		"principal "+principal+" performed "+action+" on "+resource,
		zap.String("principal", principal),
		zap.String("resource", resource),
	)
}

func (s *SecurityLogger) DataIntegrity(resource, detail string) {
	s.event(
		"data_integrity:"+resource,
		zapcore.WarnLevel,
		detail,
		zap.String("resource", resource),
	)
}

// NewLogger creates a new default logger
// it will need to be closed with
// ```
// defer logger.Desugar().Sync()
// ```
// to make sure all has been piped out before terminating
func NewLogger(l string) *Logger {
	var lvl string

	val := strings.ToLower(l)

	switch val {
	case "debug", "info", "warn", "error":
		lvl = val
	case "warning":
		lvl = "warn"
	default:
		lvl = "error"
	}

	level, err := zap.ParseAtomicLevel(lvl)
	if err != nil {
		panic(err.Error())
	}

	c := zap.NewProductionConfig()
	c.Level = level
	c.EncoderConfig.TimeKey = "ts"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.Encoding = "json"

	if lvl == "debug" {
		c.Development = true
		c.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	logger := zap.Must(c.Build())

	// security events are always emitted, regardless of the operational level
	sc := zap.NewProductionConfig()
	sc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sc.EncoderConfig.TimeKey = "ts"
	sc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	security := zap.Must(sc.Build()).Named(securityLoggerName)

	return &Logger{
		SugaredLogger: logger.Sugar(),
		security:      &SecurityLogger{l: security},
	}
}
