package timeline

// orderDiff is the minimal difference the engine needs between two applied
// display orders: whether anything changed at all, and whether the item at
// the viewport's leading edge changed identity. The latter is what decides
// animate-vs-silent and whether anchor work is needed.
type orderDiff struct {
	identical  bool
	topChanged bool
}

func diffOrders(prev, next []string) orderDiff {
	if ordersEqual(prev, next) {
		return orderDiff{identical: true}
	}
	// Transitions through empty are never treated as a top change, so
	// they never animate.
	if len(prev) == 0 || len(next) == 0 {
		return orderDiff{}
	}
	return orderDiff{topChanged: prev[0] != next[0]}
}

func ordersEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
