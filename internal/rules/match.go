// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

// Legacy list ids. Every Signature carries exactly one matchList per
// id; buffer ids (sticky buffers, app-layer and custom buffers) live
// past listMax in the growable buffer vector instead.
const (
	ListMatch = iota
	ListPMatch
	ListBase64Data
	ListTMatch
	ListPostMatch
	ListSuppress
	ListThreshold
	listMax // sentinel: first id that belongs to the buffer vector
)

// BufferCap is the maximum number of distinct buffers (sticky,
// app-layer, or custom) a single signature may reference.
const BufferCap = 64

// bufferGrowStep is how many slots the buffer vector grows by when it
// runs out of capacity, up to BufferCap.
const bufferGrowStep = 8

// SmFlag is a bitmask of per-SigMatch flags.
type SmFlag uint8

const (
	// SmFlagRelativeNext is set on a content/pcre SigMatch when a
	// follower uses within/distance against it, so the follower's
	// match offset is relative to this node rather than absolute.
	SmFlagRelativeNext SmFlag = 1 << iota
	SmFlagRawBytes
	SmFlagReplace
	SmFlagNegated
	SmFlagDepth
	SmFlagOffset
)

func (f SmFlag) has(b SmFlag) bool { return f&b != 0 }

// SigMatch is a node in a doubly linked list belonging to exactly one
// legacy list or buffer. Ctx is opaque, owned by the keyword that
// created it via Setup; Free releases it.
type SigMatch struct {
	Type  uint16 // keyword id, per the registry in keywords.go
	Ctx   any
	Idx   int // creation order, assigned from Signature.smCnt
	Flags SmFlag

	prev, next *SigMatch
}

// matchList is a head/tail pair over SigMatch nodes belonging to one
// legacy list.
type matchList struct {
	head, tail *SigMatch
}

func (l *matchList) append(sm *SigMatch) {
	sm.prev = l.tail
	sm.next = nil
	if l.tail != nil {
		l.tail.next = sm
	} else {
		l.head = sm
	}
	l.tail = sm
}

// unlinkTail removes and returns the list's tail node. Used only by
// content_modifier_transfer, which always moves the tail node.
func (l *matchList) unlinkTail() *SigMatch {
	sm := l.tail
	if sm == nil {
		return nil
	}
	l.tail = sm.prev
	if l.tail != nil {
		l.tail.next = nil
	} else {
		l.head = nil
	}
	sm.prev, sm.next = nil, nil
	return sm
}

// BufferKind classifies a buffer for the C6 buffer-mix check.
type BufferKind int

const (
	BufferKindPacket BufferKind = iota
	BufferKindApp
	BufferKindFrame
)

// Buffer is one entry in a signature's buffer vector: a sticky,
// app-layer, or custom match target identified by a list id ≥
// listMax. Each buffer name/kind comes from the keyword or buffer-type
// registry (external.go's BufferTypeResolver).
type Buffer struct {
	ID   int
	Name string
	Kind BufferKind

	head, tail *SigMatch

	OnlyToServer bool
	OnlyToClient bool
	MultiCapable bool
	// SMInit is set when the buffer was created implicitly by a
	// Setup callback (as opposed to an explicit sticky-buffer
	// keyword) on the first append into it.
	SMInit bool
}

func (b *Buffer) append(sm *SigMatch) {
	sm.prev = b.tail
	sm.next = nil
	if b.tail != nil {
		b.tail.next = sm
	} else {
		b.head = sm
	}
	b.tail = sm
}

// findBuffer returns the index of the buffer with the given id, or -1.
func (s *Signature) findBuffer(id int) int {
	for i := range s.buffers {
		if s.buffers[i].ID == id {
			return i
		}
	}
	return -1
}

// nextIdx assigns the next monotonic SigMatch index.
func (s *Signature) nextIdx() int {
	idx := s.smCnt
	s.smCnt++
	return idx
}

// AppendMatch routes a new SigMatch into a legacy list (listID <
// listMax) or the current/named buffer (listID ≥ listMax), growing the
// buffer vector as needed.
//
// name/kind/multiCapable describe a brand-new buffer when one must be
// allocated; they are ignored when an existing buffer is reused.
func (s *Signature) AppendMatch(listID int, smType uint16, ctx any, name string, kind BufferKind, multiCapable bool) (*SigMatch, error) {
	sm := &SigMatch{Type: smType, Ctx: ctx, Idx: s.nextIdx()}

	if listID < listMax {
		s.legacy[listID].append(sm)
		return sm, nil
	}

	bufIdx := s.curBuf
	if bufIdx < 0 || s.buffers[bufIdx].ID != listID {
		if existing := s.findBuffer(listID); existing >= 0 && !s.buffers[existing].MultiCapable {
			bufIdx = existing
		} else {
			var err error
			bufIdx, err = s.allocBuffer(listID, name, kind, multiCapable)
			if err != nil {
				return nil, err
			}
			s.buffers[bufIdx].SMInit = true
		}
	}

	buf := &s.buffers[bufIdx]
	if s.forceToSrv {
		buf.OnlyToServer = true
	}
	if s.forceToClient {
		buf.OnlyToClient = true
	}
	buf.append(sm)
	return sm, nil
}

// allocBuffer grows the buffer vector by bufferGrowStep (never past
// BufferCap) and appends a fresh Buffer with the given id.
func (s *Signature) allocBuffer(id int, name string, kind BufferKind, multiCapable bool) (int, error) {
	if len(s.buffers) >= BufferCap {
		return -1, newSemanticf("buffer vector is full: cannot add buffer %q (id %d), cap is %d", name, id, BufferCap)
	}
	if cap(s.buffers) == len(s.buffers) {
		grown := make([]Buffer, len(s.buffers), min(len(s.buffers)+bufferGrowStep, BufferCap))
		copy(grown, s.buffers)
		s.buffers = grown
	}
	s.buffers = append(s.buffers, Buffer{ID: id, Name: name, Kind: kind, MultiCapable: multiCapable})
	return len(s.buffers) - 1, nil
}

// SetStickyBuffer makes the buffer with the given id the current
// append target, allocating it if it does not yet exist.
func (s *Signature) SetStickyBuffer(id int, name string, kind BufferKind, multiCapable bool) error {
	if idx := s.findBuffer(id); idx >= 0 {
		s.curBuf = idx
		return nil
	}
	idx, err := s.allocBuffer(id, name, kind, multiCapable)
	if err != nil {
		return err
	}
	s.curBuf = idx
	return nil
}

// ClearStickyBuffer resets the sticky-buffer cursor, as happens after
// pkt_data or between options that do not continue the active buffer.
func (s *Signature) ClearStickyBuffer() { s.curBuf = -1 }
