package timeline

// Offsetter is anything with a cached offset: blocks and items.
type Offsetter interface {
	Y() int
}

// BinarySearchBlocksOrItems finds the entry containing edge in a list sorted
// by offset. Top-to-bottom it returns the last index with Y() <= edge,
// bottom-to-top the last index with Y() < edge. The result is 0 when no entry
// qualifies and the list is non-empty; -1 for an empty list.
func BinarySearchBlocksOrItems[T Offsetter](list []T, edge int, topToBottom bool) int {
	if len(list) == 0 {
		return -1
	}
	start, end := 0, len(list)
	for end-start > 1 {
		mid := (start + end) / 2
		y := list[mid].Y()
		var chooseLeft bool
		if topToBottom {
			chooseLeft = y > edge
		} else {
			chooseLeft = y >= edge
		}
		if chooseLeft {
			end = mid
		} else {
			start = mid
		}
	}
	return start
}
