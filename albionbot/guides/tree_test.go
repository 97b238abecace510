package guides

import (
	"reflect"
	"testing"
)

func TestFind(t *testing.T) {
	tests := []struct {
		name      string
		path      []string
		wantTitle string
		wantNil   bool
	}{
		{name: "EmptyPathIsRoot", path: nil, wantTitle: "Albion zvz roles"},
		{name: "TopLevel", path: []string{"Tank"}, wantTitle: "Tank Roles"},
		{name: "Leaf", path: []string{"Tank", "Clumper Tank", "Golem"}, wantTitle: "Earthrune Staff (Golem)"},
		{name: "DeepLeaf", path: []string{"Support", "Offensive support", "HP cut", "Incubus"}, wantTitle: "Incubus Mace"},
		{name: "BrokenPath", path: []string{"Tank", "NoSuchGroup"}, wantNil: true},
		{name: "WrongRootName", path: []string{"Tanks"}, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Find(tt.path)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Find(%v) = %v, want nil", tt.path, got.Title)
				}
				return
			}
			if got == nil {
				t.Fatalf("Find(%v) = nil", tt.path)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Find(%v).Title = %q, want %q", tt.path, got.Title, tt.wantTitle)
			}
		})
	}
}

func TestPathRoundTrip(t *testing.T) {
	path := []string{"Support", "Offensive support", "HP cut"}
	if got := ParsePath(JoinPath(path)); !reflect.DeepEqual(got, path) {
		t.Errorf("ParsePath(JoinPath()) = %v, want %v", got, path)
	}
	if got := ParsePath(""); got != nil {
		t.Errorf("ParsePath(\"\") = %v, want nil", got)
	}
}

func TestTreeNodesHaveText(t *testing.T) {
	var walk func(path []string, nodes []Node)
	walk = func(path []string, nodes []Node) {
		for _, n := range nodes {
			p := append(append([]string(nil), path...), n.Name)
			if n.Title == "" || n.Text == "" {
				t.Errorf("node %v missing title or text", p)
			}
			walk(p, n.Children)
		}
	}
	walk(nil, Root().Children)
}
