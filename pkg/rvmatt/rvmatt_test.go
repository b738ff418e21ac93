package rvmatt

import (
	"strings"
	"testing"

	"github.com/dshills/rvmscene/pkg/store"
)

func TestParseNestedBlocksAndMultiAssignLine(t *testing.T) {
	src := `
NEW ROOT-1
Tag := 'PIPE-100'
NEW CHILD-1
Material := 'Steel'&end&Weight := '12.5'
END
END
`
	root, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(root.Children) != 1 || root.Children[0].Name != "ROOT-1" {
		t.Fatalf("root children = %+v, want one ROOT-1 block", root.Children)
	}
	top := root.Children[0]
	if len(top.Attrs) != 1 || top.Attrs[0] != (KV{Key: "Tag", Value: "PIPE-100"}) {
		t.Fatalf("top.Attrs = %+v, want [{Tag PIPE-100}]", top.Attrs)
	}
	if len(top.Children) != 1 || top.Children[0].Name != "CHILD-1" {
		t.Fatalf("top.Children = %+v, want one CHILD-1 block", top.Children)
	}
	child := top.Children[0]
	want := []KV{{Key: "Material", Value: "Steel"}, {Key: "Weight", Value: "12.5"}}
	if len(child.Attrs) != 2 || child.Attrs[0] != want[0] || child.Attrs[1] != want[1] {
		t.Fatalf("child.Attrs = %+v, want %+v", child.Attrs, want)
	}
}

func TestParseUnmatchedEndIsError(t *testing.T) {
	_, err := Parse(strings.NewReader("END\n"))
	if err == nil {
		t.Fatal("Parse with an unmatched END succeeded, want error")
	}
}

func TestParseUnclosedBlockIsError(t *testing.T) {
	_, err := Parse(strings.NewReader("NEW A\nTag := 'x'\n"))
	if err == nil {
		t.Fatal("Parse with an unclosed block succeeded, want error")
	}
}

func TestAttachAttachesMatchingGroupsAndSkipsUnmatched(t *testing.T) {
	s := store.New()
	file := s.NewNode(0, store.NodeFile)
	model := s.NewNode(file, store.NodeModel)
	root := s.NewNode(model, store.NodeGroup)
	s.Node(root).Group.Name = s.Strings.Intern("ROOT-1")
	child := s.NewNode(root, store.NodeGroup)
	s.Node(child).Group.Name = s.Strings.Intern("CHILD-1")

	tree := &Group{Children: []*Group{
		{
			Name:  "ROOT-1",
			Attrs: []KV{{Key: "Tag", Value: "PIPE-100"}},
			Children: []*Group{
				{Name: "CHILD-1", Attrs: []KV{{Key: "Material", Value: "Steel"}}},
				{Name: "NO-SUCH-GROUP", Attrs: []KV{{Key: "X", Value: "Y"}}},
			},
		},
		{Name: "MISSING-ROOT", Attrs: []KV{{Key: "X", Value: "Y"}}},
	}}

	Attach(s, tree)

	keyTag := s.Strings.Intern("Tag")
	ah := s.GetAttribute(root, keyTag)
	if ah == 0 {
		t.Fatal("GetAttribute(root, Tag) = 0, want an attached attribute")
	}
	if s.Strings.String(s.Attribute(ah).Value) != "PIPE-100" {
		t.Fatalf("Tag value = %q, want PIPE-100", s.Strings.String(s.Attribute(ah).Value))
	}

	keyMaterial := s.Strings.Intern("Material")
	ch := s.GetAttribute(child, keyMaterial)
	if ch == 0 {
		t.Fatal("GetAttribute(child, Material) = 0, want an attached attribute")
	}
}
