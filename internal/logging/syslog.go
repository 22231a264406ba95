// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package logging

import (
	"fmt"
	"io"
	"log/syslog"
)

// SyslogConfig configures an optional syslog mirror for rule-load
// diagnostics, so an operator running this engine across a large
// ruleset can centralize warnings and errors on a syslog collector.
type SyslogConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Protocol string // "udp" or "tcp"
	Tag      string
	// Facility is the standard RFC 5424 facility code (1 = user-level
	// messages), not a pre-shifted syslog.Priority.
	Facility int
}

// DefaultSyslogConfig returns a disabled syslog configuration with the
// engine's conventional defaults filled in.
func DefaultSyslogConfig() SyslogConfig {
	return SyslogConfig{
		Enabled:  false,
		Port:     514,
		Protocol: "udp",
		Tag:      "ruleparse",
		Facility: 1,
	}
}

// syslogWriter adapts a *syslog.Writer to io.Writer with a fixed
// severity, since slog handlers only ever call Write.
type syslogWriter struct {
	w        *syslog.Writer
	severity syslog.Priority
}

func (s *syslogWriter) Write(p []byte) (int, error) {
	msg := string(p)
	switch s.severity {
	case syslog.LOG_ERR:
		return len(p), s.w.Err(msg)
	case syslog.LOG_WARNING:
		return len(p), s.w.Warning(msg)
	case syslog.LOG_DEBUG:
		return len(p), s.w.Debug(msg)
	default:
		return len(p), s.w.Info(msg)
	}
}

// NewSyslogWriter dials the syslog destination described by cfg and
// returns an io.Writer suitable for Logger.AddWriter.
func NewSyslogWriter(cfg SyslogConfig) (io.Writer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("logging: syslog host is required")
	}

	port := cfg.Port
	if port == 0 {
		port = 514
	}
	protocol := cfg.Protocol
	if protocol == "" {
		protocol = "udp"
	}
	tag := cfg.Tag
	if tag == "" {
		tag = "ruleparse"
	}
	facility := cfg.Facility
	if facility == 0 {
		facility = 1
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, port)
	priority := syslog.Priority(facility<<3) | syslog.LOG_INFO
	w, err := syslog.Dial(protocol, addr, priority, tag)
	if err != nil {
		return nil, fmt.Errorf("logging: dial syslog %s://%s: %w", protocol, addr, err)
	}

	return &syslogWriter{w: w, severity: syslog.LOG_INFO}, nil
}
