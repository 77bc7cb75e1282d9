// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"go.uber.org/zap"
)

const (
	securityLogType = "security"
	appID           = "brand-invite-service"
)

var _ SecurityLoggerInterface = (*SecurityLogger)(nil)

// SecurityLogger emits security relevant events in a fixed shape so they can
// be routed separately from application logs.
type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) event(name, level, description string, fields ...zap.Field) {
	base := []zap.Field{
		zap.String("type", securityLogType),
		zap.String("appid", appID),
		zap.String("event", name),
		zap.String("level", level),
		zap.String("description", description),
	}
	s.l.Info(description, append(base, fields...)...)
}

func (s *SecurityLogger) SystemStartup() {
	s.event("sys_startup", "WARN", "service started")
}

func (s *SecurityLogger) SystemShutdown() {
	s.event("sys_shutdown", "WARN", "service stopped")
}

func (s *SecurityLogger) AuthnFailure(reason string) {
	s.event("authn_login_fail", "WARN", "authentication failed", zap.String("reason", reason))
}

func (s *SecurityLogger) AuthzFailure(userID, resource string) {
	s.event(
		"authz_fail:"+userID+","+resource,
		"CRITICAL",
		"user attempted to access a resource without entitlement",
		zap.String("user_id", userID),
		zap.String("resource", resource),
	)
}

func (s *SecurityLogger) MembershipGranted(userID, brandID string) {
	s.event(
		"user_privilege_change:"+userID+","+brandID,
		"WARN",
		"user joined brand through invite",
		zap.String("user_id", userID),
		zap.String("brand_id", brandID),
	)
}

func newSecurityLogger(l *zap.Logger) *SecurityLogger {
	return &SecurityLogger{l: l}
}
