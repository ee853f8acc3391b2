package grid

import (
	"sync"
	"sync/atomic"
	"testing"
)

// TestClaimAndRelease verifies basic ownership transitions
func TestClaimAndRelease(t *testing.T) {
	g := New(6, 6)
	c := Cell{X: 2, Y: 3}

	if !g.IsFree(c) {
		t.Fatal("Expected new cell to be free")
	}
	if !g.TryClaim(c) {
		t.Fatal("Expected first claim to succeed")
	}
	if g.TryClaim(c) {
		t.Error("Expected second claim to fail")
	}
	if g.IsFree(c) {
		t.Error("Expected claimed cell to be occupied")
	}
	if got := g.Occupied(); got != 1 {
		t.Errorf("Expected 1 occupied cell, got %d", got)
	}

	g.Release(c)
	if !g.IsFree(c) {
		t.Error("Expected released cell to be free")
	}
	if got := g.Occupied(); got != 0 {
		t.Errorf("Expected 0 occupied cells, got %d", got)
	}
}

// TestOutOfBounds verifies out-of-range cells are never claimable nor free
func TestOutOfBounds(t *testing.T) {
	g := New(3, 2)
	for _, c := range []Cell{{-1, 0}, {0, -1}, {3, 0}, {0, 2}} {
		if g.InBounds(c) {
			t.Errorf("Expected %v out of bounds", c)
		}
		if g.TryClaim(c) {
			t.Errorf("Expected claim of %v to fail", c)
		}
		if g.IsFree(c) {
			t.Errorf("Expected %v to not report free", c)
		}
		g.Release(c) // must not panic
	}
}

// TestMoveClaimsBeforeRelease verifies Move transfers ownership and refuses held targets
func TestMoveClaimsBeforeRelease(t *testing.T) {
	g := New(4, 4)
	from, to, blocked := Cell{1, 1}, Cell{2, 1}, Cell{1, 2}

	g.TryClaim(from)
	g.TryClaim(blocked)

	if g.Move(from, blocked) {
		t.Fatal("Expected move into held cell to fail")
	}
	if g.IsFree(from) {
		t.Error("Expected failed move to keep the source")
	}

	if !g.Move(from, to) {
		t.Fatal("Expected move into free cell to succeed")
	}
	if !g.IsFree(from) || g.IsFree(to) {
		t.Error("Expected ownership to move from source to destination")
	}
	if got := g.Occupied(); got != 2 {
		t.Errorf("Expected occupied count unchanged at 2, got %d", got)
	}
}

// TestConcurrentClaimsAreExclusive verifies a contended cell has exactly one winner
func TestConcurrentClaimsAreExclusive(t *testing.T) {
	g := New(6, 6)
	target := Cell{3, 3}

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryClaim(target) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("Expected exactly one winner, got %d", wins.Load())
	}
}

// TestConcurrentSwapsDoNotDeadlock verifies opposite moves between neighbors terminate
// and never lose or duplicate a cell
func TestConcurrentSwapsDoNotDeadlock(t *testing.T) {
	g := New(2, 1)
	left, right := Cell{0, 0}, Cell{1, 0}
	g.TryClaim(left)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if !g.Move(left, right) {
					g.Move(right, left)
				}
			}
		}()
	}
	wg.Wait()

	if got := g.Occupied(); got < 1 {
		t.Errorf("Expected ownership to survive, got %d occupied", got)
	}
}

// TestOccupiedMatchesWalkers verifies occupied count equals the number of owners
// while owners move concurrently
func TestOccupiedMatchesWalkers(t *testing.T) {
	g := New(6, 6)
	walkers := []Cell{{0, 0}, {5, 5}, {0, 5}, {5, 0}}
	for _, c := range walkers {
		g.TryClaim(c)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := range walkers {
		wg.Add(1)
		go func(pos Cell) {
			defer wg.Done()
			dirs := []Cell{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
			for k := 0; ; k++ {
				select {
				case <-stop:
					return
				default:
				}
				d := dirs[k%len(dirs)]
				next := pos.Add(d.X, d.Y)
				if g.Move(pos, next) {
					pos = next
				}
			}
		}(walkers[i])
	}

	for i := 0; i < 200; i++ {
		if got := g.Occupied(); got != len(walkers) {
			close(stop)
			wg.Wait()
			t.Fatalf("Expected %d occupied, observed %d", len(walkers), got)
		}
	}
	close(stop)
	wg.Wait()
}

// TestSnapshotAndReset verifies snapshot layout and full reset
func TestSnapshotAndReset(t *testing.T) {
	g := New(3, 2)
	g.TryClaim(Cell{2, 1})

	snap := g.Snapshot()
	if len(snap) != 2 || len(snap[0]) != 3 {
		t.Fatalf("Expected 2 rows of 3, got %d rows", len(snap))
	}
	if snap[1][2] != Occupied || snap[0][0] != Free {
		t.Error("Expected snapshot to mirror claims in row-major order")
	}

	g.Reset()
	if g.Occupied() != 0 {
		t.Error("Expected reset grid to be empty")
	}
}
