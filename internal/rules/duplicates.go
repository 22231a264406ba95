// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rules

// DupOutcome is the result of inserting a signature into the
// duplicate index.
type DupOutcome int

const (
	DupNew DupOutcome = iota
	DupDropNew
	DupReplaced
)

func (o DupOutcome) String() string {
	switch o {
	case DupDropNew:
		return "drop_new"
	case DupReplaced:
		return "replaced"
	default:
		return "new"
	}
}

// ruleNode is one cell in the engine's signature list. A bidirectional
// pair occupies two adjacent cells; sibling links the two so they
// unlink and relink together.
type ruleNode struct {
	sig        *Signature
	prev, next *ruleNode
	sibling    *ruleNode
}

type dupKey struct {
	gid, sid int
}

// DuplicateIndex is the hash index keyed by (gid,sid); each entry
// resolves collisions by revision, keeping the engine's doubly-linked
// signature list consistent across replacement.
type DuplicateIndex struct {
	byKey      map[dupKey]*ruleNode
	head, tail *ruleNode
}

// NewDuplicateIndex creates an empty duplicate index.
func NewDuplicateIndex() *DuplicateIndex {
	return &DuplicateIndex{byKey: make(map[dupKey]*ruleNode)}
}

// Insert adds primary (and, if the bidirectional cloner produced one,
// its sibling clone) to the index and the engine's signature list.
func (d *DuplicateIndex) Insert(primary, clone *Signature) DupOutcome {
	key := dupKey{primary.GID, primary.SID}

	node := &ruleNode{sig: primary}
	var sib *ruleNode
	if clone != nil {
		sib = &ruleNode{sig: clone, sibling: node}
		node.sibling = sib
	}

	existing, found := d.byKey[key]
	if !found {
		d.byKey[key] = node
		d.append(node)
		if sib != nil {
			d.append(sib)
		}
		return DupNew
	}

	if primary.Rev <= existing.sig.Rev {
		return DupDropNew
	}

	d.unlink(existing)
	d.byKey[key] = node
	d.append(node)
	if sib != nil {
		d.append(sib)
	}
	return DupReplaced
}

// append adds n at the tail of the engine's signature list.
func (d *DuplicateIndex) append(n *ruleNode) {
	n.prev = d.tail
	n.next = nil
	if d.tail != nil {
		d.tail.next = n
	} else {
		d.head = n
	}
	d.tail = n
}

// unlink removes n (and its sibling, if any) from the list, fixing up
// the neighbors' prev/next pointers.
func (d *DuplicateIndex) unlink(n *ruleNode) {
	nodes := []*ruleNode{n}
	if n.sibling != nil {
		nodes = append(nodes, n.sibling)
	}

	for _, victim := range nodes {
		prev, next := victim.prev, victim.next
		if prev != nil {
			prev.next = next
		} else {
			d.head = next
		}
		if next != nil {
			next.prev = prev
		} else {
			d.tail = prev
		}
	}
}

// Signatures returns the engine's current signature list in order.
func (d *DuplicateIndex) Signatures() []*Signature {
	var out []*Signature
	for n := d.head; n != nil; n = n.next {
		out = append(out, n.sig)
	}
	return out
}

// Len reports how many signatures (including bidirectional siblings)
// are currently indexed.
func (d *DuplicateIndex) Len() int {
	n := 0
	for cur := d.head; cur != nil; cur = cur.next {
		n++
	}
	return n
}
