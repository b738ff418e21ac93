// Package filter implements the group-name keep/discard passes: prune
// whole group subtrees by name, either removing named subtrees (Discard)
// or keeping only the subtrees that contain a named group (Keep).
package filter

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/dshills/rvmscene/pkg/intern"
	"github.com/dshills/rvmscene/pkg/rvmlog"
	"github.com/dshills/rvmscene/pkg/store"
)

// ParseTagList reads a newline-delimited tag list, one group name per line.
// A line may carry tab-separated leading columns (e.g. a path or comment
// prefix exported by some authoring tools); only the text after the last
// tab on the line is taken as the group name.
func ParseTagList(data []byte) []string {
	var tags []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if i := strings.LastIndexByte(line, '\t'); i >= 0 {
			line = line[i+1:]
		}
		if line != "" {
			tags = append(tags, line)
		}
	}
	return tags
}

// Discard removes every group subtree (model-direct children and below)
// whose name is in names, without descending into a removed subtree. It
// returns the number of matching subtrees removed; their descendants are
// not counted.
func Discard(s *store.Store, log rvmlog.Logger, names []string) int {
	tagged := internSet(s, names)
	discarded := 0
	walkModels(s, func(model *store.Node) {
		pruneDiscard(s, tagged, model, &discarded)
	})
	log.Debugf("filter: discarded %d groups", discarded)
	return discarded
}

// Keep removes every group subtree that neither matches a name in names
// nor contains a descendant that does, preserving the ancestor path down to
// any match. It returns the number of groups removed.
func Keep(s *store.Store, log rvmlog.Logger, names []string) int {
	wanted := internSet(s, names)
	discarded := 0
	walkModels(s, func(model *store.Node) {
		pruneKeep(s, wanted, model, &discarded)
	})
	log.Debugf("filter: kept subtrees for %d names, discarded %d groups", len(names), discarded)
	return discarded
}

func internSet(s *store.Store, names []string) map[intern.Handle]bool {
	set := make(map[intern.Handle]bool, len(names))
	for _, n := range names {
		set[s.Strings.Intern(n)] = true
	}
	return set
}

func walkModels(s *store.Store, fn func(model *store.Node)) {
	for _, fh := range s.Roots() {
		file := s.Node(fh)
		for _, mh := range file.Children {
			fn(s.Node(mh))
		}
	}
}

func pruneDiscard(s *store.Store, tagged map[intern.Handle]bool, n *store.Node, discarded *int) {
	kept := n.Children[:0]
	for _, ch := range n.Children {
		g := s.Node(ch)
		if tagged[g.Group.Name] {
			*discarded++
			continue
		}
		pruneDiscard(s, tagged, g, discarded)
		kept = append(kept, ch)
	}
	n.Children = kept
}

func pruneKeep(s *store.Store, wanted map[intern.Handle]bool, n *store.Node, discarded *int) bool {
	kept := n.Children[:0]
	anyKept := false
	for _, ch := range n.Children {
		g := s.Node(ch)
		selfMatch := wanted[g.Group.Name]
		childKept := pruneKeep(s, wanted, g, discarded)
		if selfMatch || childKept {
			kept = append(kept, ch)
			anyKept = true
		} else {
			*discarded++
		}
	}
	n.Children = kept
	return anyKept
}
