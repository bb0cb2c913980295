package probe

import "math/rand"

// An Operation is an opaque timed action over the measurement array. The
// orchestrator assumes only that it touches every element exactly once per
// call, runs in bounded time, and performs no hidden synchronization.
type Operation func(Array)

// The access order is a fixed pseudo-random permutation. A fixed seed makes
// every run and every worker walk the array identically, while the
// irregular stride keeps the prefetchers from following along.
var accessOrder = buildAccessOrder()

func buildAccessOrder() [ArraySize]int {
	r := rand.New(rand.NewSource(0x10ad5))

	var order [ArraySize]int
	copy(order[:], r.Perm(ArraySize))

	return order
}

var loadSink uint32

// Loads reads every counter once in permuted order.
func Loads(a Array) {
	var s uint32
	for _, i := range accessOrder {
		s += a[i].Load()
	}
	loadSink = s
}

// Stores writes every counter once in permuted order.
func Stores(a Array) {
	for _, i := range accessOrder {
		a[i].Store(1)
	}
}

// AtomicIncs atomically increments every counter once in permuted order.
func AtomicIncs(a Array) {
	for _, i := range accessOrder {
		a[i].Inc()
	}
}

// StoresN returns an Operation that writes only the first n lines of the
// walk, for the consecutive-writes timing sweep.
func StoresN(n int) Operation {
	return func(a Array) {
		for _, i := range accessOrder[:n] {
			a[i].Store(1)
		}
	}
}
