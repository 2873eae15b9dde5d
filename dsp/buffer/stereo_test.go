package buffer

import "testing"

func TestStereoBlocksClampToCapacity(t *testing.T) {
	s := NewStereo(4, 3)
	if s.Blocks() != 0 {
		t.Fatalf("Blocks() = %d, want 0", s.Blocks())
	}
	if got := s.SetBlocks(5); got != 3 {
		t.Fatalf("SetBlocks(5) = %d, want 3", got)
	}
	if s.Left.Len() != 12 || s.Right.Len() != 12 {
		t.Fatalf("channel lengths = %d/%d, want 12", s.Left.Len(), s.Right.Len())
	}
}

func TestStereoWriteBlockAddressing(t *testing.T) {
	s := NewStereo(2, 4)
	s.SetBlocks(2)

	if !s.WriteBlock(1, []float64{1, 2}, []float64{3, 4}) {
		t.Fatal("WriteBlock(1) = false, want true")
	}
	if s.WriteBlock(2, []float64{9, 9}, []float64{9, 9}) {
		t.Fatal("WriteBlock(2) past length = true, want false")
	}

	l, r, ok := s.Block(1)
	if !ok {
		t.Fatal("Block(1) not ok")
	}
	if l[0] != 1 || l[1] != 2 || r[0] != 3 || r[1] != 4 {
		t.Fatalf("Block(1) = %v %v", l, r)
	}
	if s.Left.Samples()[2] != 1 {
		t.Fatalf("block 1 not at frame offset 2: %v", s.Left.Samples())
	}

	if _, _, ok := s.Block(-1); ok {
		t.Fatal("Block(-1) ok = true")
	}
}

func TestStereoResizeDoesNotAllocate(t *testing.T) {
	s := NewStereo(64, 32)
	allocs := testing.AllocsPerRun(100, func() {
		s.SetBlocks(31)
		s.SetBlocks(5)
	})
	if allocs != 0 {
		t.Fatalf("SetBlocks allocated %v times per run", allocs)
	}
}
