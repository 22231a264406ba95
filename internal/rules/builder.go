// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

// lastMatchInChain walks a SigMatch chain head-to-tail and returns the
// last node whose Type is in types, or nil. Because Idx increases
// monotonically along the chain, the last matching node is also the
// highest-Idx one in this chain.
func lastMatchInChain(head *SigMatch, types []uint16) *SigMatch {
	var best *SigMatch
	for sm := head; sm != nil; sm = sm.next {
		for _, t := range types {
			if sm.Type == t {
				best = sm
				break
			}
		}
	}
	return best
}

// GetLastMatch returns the SigMatch with the highest Idx among the
// given keyword-type predicates, searching listID's legacy list AND
// its buffer entry unconditionally: returning early on an empty
// legacy-list tail without also checking the buffer carrying the same
// id would silently miss a match a caller expects to find.
func (s *Signature) GetLastMatch(listID int, types ...uint16) *SigMatch {
	var fromList, fromBuffer *SigMatch

	if listID < listMax {
		fromList = lastMatchInChain(s.legacy[listID].head, types)
	}
	if idx := s.findBuffer(listID); idx >= 0 {
		fromBuffer = lastMatchInChain(s.buffers[idx].head, types)
	}

	switch {
	case fromList == nil:
		return fromBuffer
	case fromBuffer == nil:
		return fromList
	case fromBuffer.Idx > fromList.Idx:
		return fromBuffer
	default:
		return fromList
	}
}

// GetLastMatchAnyBuffer searches every buffer (not just one listID),
// returning the highest-Idx match across all of them. Used by
// keywords whose relative-offset predicate is not buffer-scoped.
func (s *Signature) GetLastMatchAnyBuffer(types ...uint16) *SigMatch {
	var best *SigMatch
	for i := range s.buffers {
		if m := lastMatchInChain(s.buffers[i].head, types); m != nil {
			if best == nil || m.Idx > best.Idx {
				best = m
			}
		}
	}
	return best
}

// SetRelativeNext marks sm as the anchor for a follower's within/
// distance match.
func (sm *SigMatch) SetRelativeNext() { sm.Flags |= SmFlagRelativeNext }

// ClearRelativeNext clears the anchor bit, used when content-modifier
// transfer moves the anchor to a new tail.
func (sm *SigMatch) ClearRelativeNext() { sm.Flags &^= SmFlagRelativeNext }

// SetAlproto establishes a single app-layer protocol on the
// signature. It refuses to override an existing, unrelated single
// alproto except via the "common family" relation (http <-> http1).
func (s *Signature) SetAlproto(p ALProto) error {
	if s.Alproto == ALProtoUnknown {
		s.Alproto = p
		s.SetFlag(FlagAppLayer)
		return nil
	}
	if s.Alproto == p {
		return nil
	}
	if alprotoFamily(s.Alproto) == alprotoFamily(p) {
		s.Alproto = alprotoFamily(p)
		return nil
	}
	return newSemanticf("cannot set alproto %s: signature already bound to %s", p, s.Alproto)
}

// SetAlprotos narrows the signature's pending multi-alproto set to the
// intersection of its current candidates (or, if none yet set, all of
// candidates) and the given set, terminated implicitly by the slice
// length (ALProtoUnknown is never a meaningful candidate value). An
// empty intersection is an error; a singleton result collapses to
// SetAlproto.
func (s *Signature) SetAlprotos(candidates []ALProto) error {
	if len(candidates) == 0 {
		return newSemantic("set_alprotos called with an empty candidate set")
	}
	if len(candidates) > SigAlprotoMax {
		return newSemanticf("alproto candidate set exceeds SIG_ALPROTO_MAX (%d)", SigAlprotoMax)
	}
	if len(candidates) == 1 {
		return s.SetAlproto(candidates[0])
	}
	if s.Alproto != ALProtoUnknown {
		for _, c := range candidates {
			if alprotoFamily(c) == alprotoFamily(s.Alproto) {
				return s.SetAlproto(c)
			}
		}
		return newSemantic("alproto candidate set intersection is empty")
	}

	existing := s.pendingAlprotoSet()

	var intersection []ALProto
	if len(existing) == 0 {
		intersection = candidates
	} else {
		for _, c := range candidates {
			for _, e := range existing {
				if c == e {
					intersection = append(intersection, c)
					break
				}
			}
		}
	}

	if len(intersection) == 0 {
		return newSemantic("alproto candidate set intersection is empty")
	}
	if len(intersection) == 1 {
		s.AlprotoSet = [SigAlprotoMax]ALProto{}
		return s.SetAlproto(intersection[0])
	}

	var compacted [SigAlprotoMax]ALProto
	copy(compacted[:], intersection)
	s.AlprotoSet = compacted
	s.SetFlag(FlagAppLayer)
	return nil
}

func (s *Signature) pendingAlprotoSet() []ALProto {
	var out []ALProto
	for _, p := range s.AlprotoSet {
		if p == ALProtoUnknown {
			break
		}
		out = append(out, p)
	}
	return out
}

// ContentModifierTransfer supports legacy content modifiers (http_uri
// and friends): it relocates the latest content match out of PMATCH
// into the named app-layer buffer and binds the signature to alproto.
func (s *Signature) ContentModifierTransfer(targetListID int, targetName string, targetKind BufferKind, alproto ALProto) error {
	if s.curBuf >= 0 {
		return newSemantic("a sticky buffer is active; content modifiers require pkt_data to clear it first")
	}
	if s.Alproto != ALProtoUnknown && alprotoFamily(s.Alproto) != alprotoFamily(alproto) {
		return newSemanticf("content modifier requires alproto %s but signature is bound to %s", alproto, s.Alproto)
	}

	content := s.legacy[ListPMatch].tail
	if content == nil {
		return newSemantic("content modifier has no preceding content match")
	}
	if content.Flags.has(SmFlagRawBytes) {
		return newSemantic("content modifier is incompatible with rawbytes")
	}
	if content.Flags.has(SmFlagReplace) {
		return newSemantic("content modifier is incompatible with replace")
	}

	wasRelative := content.prev != nil && content.prev.Flags.has(SmFlagRelativeNext)
	if wasRelative {
		content.prev.ClearRelativeNext()
	}

	s.legacy[ListPMatch].unlinkTail()

	bufIdx := s.findBuffer(targetListID)
	if bufIdx < 0 {
		var err error
		bufIdx, err = s.allocBuffer(targetListID, targetName, targetKind, false)
		if err != nil {
			return err
		}
	}
	buf := &s.buffers[bufIdx]
	if wasRelative && buf.tail != nil {
		buf.tail.SetRelativeNext()
	}
	content.prev, content.next = nil, nil
	buf.append(content)

	if err := s.SetAlproto(alproto); err != nil {
		return err
	}
	s.SetFlag(FlagAppLayer)
	return nil
}
