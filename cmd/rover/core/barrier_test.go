package core

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBarrierEpochs(t *testing.T) {
	const parties = 7
	const rounds = 50

	b := NewBarrier(parties)
	var mu sync.Mutex
	arrivals := make(map[uint64]int)

	var wg sync.WaitGroup
	for p := 0; p < parties; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				gen, err := b.Wait()
				if err != nil {
					t.Errorf("Wait failed: %v", err)
					return
				}
				if gen != uint64(r) {
					t.Errorf("Expected generation %d, got %d", r, gen)
				}
				mu.Lock()
				arrivals[gen]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if got := b.Generation(); got != rounds {
		t.Errorf("Expected %d generations, got %d", rounds, got)
	}
	for gen, n := range arrivals {
		if n != parties {
			t.Errorf("Generation %d passed by %d parties, want %d", gen, n, parties)
		}
	}
}

func TestBarrierNoPartyRunsAhead(t *testing.T) {
	const parties = 4
	b := NewBarrier(parties)

	var mu sync.Mutex
	arrived := make([]int, parties)

	var wg sync.WaitGroup
	for p := 0; p < parties; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for r := 0; r < 20; r++ {
				mu.Lock()
				for q := range arrived {
					if arrived[q] < r || arrived[q] > r+1 {
						t.Errorf("Party %d at round %d while party %d arrived %d times", p, r, q, arrived[q])
					}
				}
				arrived[p]++
				mu.Unlock()

				if _, err := b.Wait(); err != nil {
					t.Errorf("Wait failed: %v", err)
					return
				}
			}
		}(p)
	}
	wg.Wait()
}

func TestBarrierBreakReleasesWaiters(t *testing.T) {
	b := NewBarrier(3)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := b.Wait()
			errs <- err
		}()
	}

	time.Sleep(10 * time.Millisecond)
	b.Break()
	b.Break()

	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			if !errors.Is(err, ErrBarrierBroken) {
				t.Errorf("Expected ErrBarrierBroken, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Waiter not released by Break")
		}
	}

	if _, err := b.Wait(); !errors.Is(err, ErrBarrierBroken) {
		t.Errorf("Expected later Wait to fail, got %v", err)
	}
	if !b.Broken() {
		t.Error("Expected Broken to report true")
	}
}

func TestBarrierSingleParty(t *testing.T) {
	b := NewBarrier(0)
	if b.Parties() != 1 {
		t.Fatalf("Expected 1 party, got %d", b.Parties())
	}
	for i := 0; i < 3; i++ {
		if _, err := b.Wait(); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	if b.Generation() != 3 {
		t.Errorf("Expected generation 3, got %d", b.Generation())
	}
}
