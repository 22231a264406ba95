// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

import (
	"time"

	"github.com/google/uuid"

	"github.com/afonot/suricata/internal/errors"
	"github.com/afonot/suricata/internal/logging"
	"github.com/afonot/suricata/internal/metrics"
)

// EngineCtx is the per-load-session context threaded through every
// parse: the keyword registry, the external collaborators, and the
// logging/metrics sinks a caller attaches diagnostics to.
type EngineCtx struct {
	// SessionID correlates every log line and parse diagnostic
	// produced by one ruleset load.
	SessionID uuid.UUID

	Registry *Registry
	Logger   *logging.Logger
	Metrics  *metrics.Metrics

	Addr     AddressResolver
	Port     PortResolver
	AppLayer AppLayerResolver
	Buffers  BufferTypeResolver

	// GenericLists maps "<proto>:<hook>:generic" to the list id the
	// builder stores on a resolved app-level Hook.
	GenericLists map[string]int

	// sigError/sigErrorSilent mirror the engine-level flags tracked
	// for a quiet-skip or silent-once outcome on the current rule.
	sigError       error
	sigErrorSilent bool
}

// NewEngineCtx creates an EngineCtx with the default, spec-excluded-
// but-real external collaborators wired in and a fresh keyword
// registry populated with the builtin set.
func NewEngineCtx(logger *logging.Logger, m *metrics.Metrics) *EngineCtx {
	reg := NewRegistry()
	RegisterBuiltinKeywords(reg)

	return &EngineCtx{
		SessionID:    uuid.New(),
		Registry:     reg,
		Logger:       logger,
		Metrics:      m,
		Addr:         defaultAddressResolver{},
		Port:         defaultPortResolver{},
		AppLayer:     defaultAppLayerResolver{},
		Buffers:      defaultBufferTypeResolver{},
		GenericLists: defaultGenericLists(),
	}
}

// defaultGenericLists seeds the "<proto>:<hook>:generic" table for
// every built-in app-layer proto and progress slot, as if registered
// at engine init the way real inspection engines register themselves.
func defaultGenericLists() map[string]int {
	lists := make(map[string]int)
	id := listMax
	for proto, progresses := range appLayerProgress {
		for progress := range progresses {
			lists[proto.String()+":"+progress+":generic"] = id
			id++
		}
	}
	for _, phase := range []PktPhase{PhaseFlowStart, PhasePreFlow, PhasePreStream, PhaseAll} {
		lists["pkt:"+phase.String()+":generic"] = id
		id++
	}
	return lists
}

// resetRuleState clears the per-rule sigError bookkeeping before
// parsing a new rule line.
func (e *EngineCtx) resetRuleState() {
	e.sigError = nil
	e.sigErrorSilent = false
}

// ParseRule runs the full C1-C8 pipeline over one rule line and
// returns the resulting signature (or the sibling pair, if the
// bidirectional cloner produced one). A quiet-skip (requires not met,
// or a previously-seen silent-once keyword) returns (nil, nil, nil).
func (e *EngineCtx) ParseRule(line string) (primary, clone *Signature, err error) {
	e.resetRuleState()

	tokens, optionSeg, err := Lex(line)
	if err != nil {
		if e.Metrics != nil {
			e.Metrics.RejectSyntactic()
		}
		return nil, nil, err
	}

	sig := NewSignature()
	sig.RawText = line

	if err := e.parseHeader(sig, tokens); err != nil {
		if e.Metrics != nil {
			if errors.GetKind(err) == errors.KindCapability {
				e.Metrics.RejectCapability()
			} else {
				e.Metrics.RejectSyntactic()
			}
		}
		return nil, nil, err
	}

	options, err := SplitOptions(optionSeg)
	if err != nil {
		if e.Metrics != nil {
			e.Metrics.RejectSyntactic()
		}
		return nil, nil, err
	}

	optionStart := time.Now()
	skip, err := e.parseOptions(sig, options)
	if e.Metrics != nil {
		e.Metrics.ObserveOptionParseDuration(time.Since(optionStart).Seconds())
	}
	if err != nil {
		if e.Metrics != nil {
			e.Metrics.RejectSemantic()
		}
		return nil, nil, err
	}
	if skip {
		if e.Metrics != nil {
			e.Metrics.QuietSkip()
		}
		return nil, nil, nil
	}

	if err := e.Validate(sig); err != nil {
		if e.Metrics != nil {
			e.Metrics.RejectSemantic()
		}
		return nil, nil, err
	}

	clone, err = e.MaybeClone(sig)
	if err != nil {
		return nil, nil, err
	}

	if e.Logger != nil {
		e.Logger.Info("signature parsed", "session", e.SessionID, "gid", sig.GID, "sid", sig.SID, "rev", sig.Rev)
	}
	if e.Metrics != nil {
		e.Metrics.SignaturesParsed.Inc()
		if clone != nil {
			e.Metrics.SignaturesCloned.Inc()
		}
	}

	return sig, clone, nil
}
