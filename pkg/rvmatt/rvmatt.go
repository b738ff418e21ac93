// Package rvmatt implements the attribute-file reader: an
// indentation-driven key/value format, keyed by group name,
// consumed alongside the binary scene to attach extra (key, value) pairs to
// groups. It is deliberately outside the core: Parse produces a plain tree,
// and Attach is the only place that touches a *store.Store.
package rvmatt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/rvmscene/pkg/store"
)

// Group is one `NEW <id> ... END` block: its own key/value attributes plus
// any nested blocks.
type Group struct {
	Name     string
	Attrs    []KV
	Children []*Group
}

// KV is one key/value assignment. Multiple assignments on a single line,
// separated by "&end&", decode to separate KV entries in order.
type KV struct {
	Key, Value string
}

// Parse reads the whole attribute file and returns its root block. The
// root itself has no Name; its Children are the top-level NEW blocks.
func Parse(r io.Reader) (*Group, error) {
	root := &Group{}
	stack := []*Group{root}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "NEW "):
			id := strings.TrimSpace(line[len("NEW "):])
			child := &Group{Name: id}
			top := stack[len(stack)-1]
			top.Children = append(top.Children, child)
			stack = append(stack, child)

		case line == "END":
			if len(stack) == 1 {
				return nil, fmt.Errorf("rvmatt: line %d: END with no matching NEW", lineNo)
			}
			stack = stack[:len(stack)-1]

		default:
			top := stack[len(stack)-1]
			for _, assign := range strings.Split(line, "&end&") {
				assign = strings.TrimSpace(assign)
				if assign == "" {
					continue
				}
				kv, err := parseAssignment(assign)
				if err != nil {
					return nil, fmt.Errorf("rvmatt: line %d: %w", lineNo, err)
				}
				top.Attrs = append(top.Attrs, kv)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("rvmatt: %w", err)
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("rvmatt: %d block(s) left unclosed at EOF", len(stack)-1)
	}
	return root, nil
}

func parseAssignment(s string) (KV, error) {
	i := strings.Index(s, ":=")
	if i < 0 {
		return KV{}, fmt.Errorf("expected 'key := value', got %q", s)
	}
	key := strings.TrimSpace(s[:i])
	val := unquote(strings.TrimSpace(s[i+2:]))
	return KV{Key: key, Value: val}, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}

// Attach walks root's blocks and attaches their KV pairs to the matching
// group nodes in s, resolving each nesting level by name against the
// matching parent group's direct children. A block whose name has no
// matching group anywhere it is looked for is skipped silently: the
// attribute file and the binary scene are produced independently and need
// not agree on every name.
func Attach(s *store.Store, root *Group) {
	for _, top := range root.Children {
		h := s.FindRootGroup(s.Strings.Intern(top.Name))
		attachGroup(s, h, top)
	}
}

func attachGroup(s *store.Store, h store.NodeHandle, g *Group) {
	if h == 0 {
		return
	}
	for _, kv := range g.Attrs {
		key := s.Strings.Intern(kv.Key)
		a := s.Attribute(s.NewAttribute(h, key))
		a.Value = s.Strings.Intern(kv.Value)
	}
	for _, child := range g.Children {
		attachGroup(s, findChildGroup(s, h, child.Name), child)
	}
}

func findChildGroup(s *store.Store, parent store.NodeHandle, name string) store.NodeHandle {
	n := s.Node(parent)
	target := s.Strings.Intern(name)
	for _, ch := range n.Children {
		c := s.Node(ch)
		if c.Kind == store.NodeGroup && c.Group.Name == target {
			return ch
		}
	}
	return 0
}
