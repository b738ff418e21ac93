package stats

import (
	"testing"

	"github.com/dshills/rvmscene/pkg/store"
)

func TestCollectReturnsUpdatedStats(t *testing.T) {
	s := store.New()
	file := s.NewNode(0, store.NodeFile)
	model := s.NewNode(file, store.NodeModel)
	group := s.NewNode(model, store.NodeGroup)
	geo := s.NewGeometry(group)
	s.Geometry(geo).SetPayload(store.KindBox, &store.Box{Lengths: [3]float32{1, 1, 1}})

	st := Collect(s)
	if st.Files != 1 || st.Models != 1 || st.Groups != 1 || st.Geometries != 1 {
		t.Fatalf("Collect() = %+v, want one of each", st)
	}
	if st != s.Stats() {
		t.Fatalf("Collect() result diverges from Store.Stats(): %+v vs %+v", st, s.Stats())
	}
}
