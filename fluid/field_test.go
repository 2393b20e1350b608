package fluid

import (
	"errors"
	"testing"
)

func TestSwapIsIdempotentOverTwoCalls(t *testing.T) {
	db, err := NewDoubleBuffer(8, 4, DyeChannels)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	read, write := db.Read(), db.Write()
	if read == write {
		t.Fatal("read and write halves must be distinct")
	}

	db.Swap()
	if db.Read() != write || db.Write() != read {
		t.Error("single swap should exchange roles")
	}

	db.Swap()
	if db.Read() != read || db.Write() != write {
		t.Error("double swap should restore the original assignment")
	}
}

func TestSwapDoesNotCopy(t *testing.T) {
	db, err := NewDoubleBuffer(4, 4, ScalarChannels)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	db.Read().Fill(3)
	db.Swap()
	if db.Write().Data[0] != 3 {
		t.Errorf("expected old read buffer to become write buffer intact, got %f", db.Write().Data[0])
	}
	if db.Read().Data[0] != 0 {
		t.Errorf("expected new read buffer untouched, got %f", db.Read().Data[0])
	}
}

func TestNewFieldRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name    string
		w, h, c int
	}{
		{"zero width", 0, 4, 1},
		{"negative height", 4, -1, 1},
		{"no channels", 4, 4, 0},
		{"too many channels", 4, 4, 5},
		{"too many cells", MaxCells, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewField(tt.w, tt.h, tt.c)
			if !errors.Is(err, ErrAllocation) {
				t.Errorf("expected ErrAllocation, got %v", err)
			}
		})
	}
}

func TestNewStoreShapes(t *testing.T) {
	s, err := NewStore(16, 9)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	defer s.Dispose()

	if s.Velocity.Read().Channels != 2 || s.Dye.Read().Channels != 3 || s.Pressure.Read().Channels != 1 {
		t.Error("unexpected channel layout")
	}
	if s.Divergence.Width != 16 || s.Divergence.Height != 9 {
		t.Errorf("divergence is %dx%d", s.Divergence.Width, s.Divergence.Height)
	}
}

func TestSampleClampsToEdge(t *testing.T) {
	f, _ := NewField(4, 1, 1)
	copy(f.Data, []float32{1, 2, 3, 4})

	if v := f.Sample(-1, 0.5, 0); v != 1 {
		t.Errorf("left clamp: got %f, want 1", v)
	}
	if v := f.Sample(2, 0.5, 0); v != 4 {
		t.Errorf("right clamp: got %f, want 4", v)
	}
	// Halfway between the centres of cells 1 and 2
	if v := f.Sample(0.5, 0.5, 0); v < 2.499 || v > 2.501 {
		t.Errorf("midpoint: got %f, want 2.5", v)
	}
}

func TestDisposedFieldPanics(t *testing.T) {
	f, _ := NewField(2, 2, 1)
	f.Dispose()
	if !f.Disposed() {
		t.Fatal("expected field to report disposed")
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic on use after dispose")
		}
	}()
	f.Clear()
}

func TestAliasedPassPanics(t *testing.T) {
	db, _ := NewDoubleBuffer(4, 4, DyeChannels)
	vel, _ := NewField(4, 4, VelocityChannels)

	defer func() {
		if recover() == nil {
			t.Error("expected panic when output aliases an input")
		}
	}()
	Advect(Pass{Name: "aliased", Inputs: []*Field{vel, db.Read()}, Output: db.Read()}, 0.016, 1)
}

func TestMismatchedPassPanics(t *testing.T) {
	a, _ := NewField(4, 4, VelocityChannels)
	b, _ := NewField(8, 4, ScalarChannels)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on mismatched field sizes")
		}
	}()
	Divergence(Pass{Name: "mismatch", Inputs: []*Field{a}, Output: b})
}
