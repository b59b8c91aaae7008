package collapse

import "math/bits"

// Stack is the set of tile IDs still possible for one output cell. Members
// are bits in a slice of words; the tiles themselves live in the engine's pool.
type Stack struct {
	words []uint64
	count int
}

// newFullStack returns a stack containing every ID in [0, n).
func newFullStack(n int) Stack {
	s := Stack{words: make([]uint64, (n+63)/64), count: n}
	for i := range s.words {
		s.words[i] = ^uint64(0)
	}
	// Clear the unused high bits of the last word
	if rem := n % 64; rem != 0 {
		s.words[len(s.words)-1] = (uint64(1) << uint(rem)) - 1
	}
	return s
}

// Entropy returns the number of candidates left.
func (s *Stack) Entropy() int {
	return s.count
}

// Contains reports whether id is still a candidate.
func (s *Stack) Contains(id int) bool {
	w := id / 64
	if id < 0 || w >= len(s.words) {
		return false
	}
	return s.words[w]&(uint64(1)<<uint(id%64)) != 0
}

// remove drops id from the stack. It returns false if id was not a member.
func (s *Stack) remove(id int) bool {
	if !s.Contains(id) {
		return false
	}
	s.words[id/64] &^= uint64(1) << uint(id%64)
	s.count--
	return true
}

// keepOnly clears every member except id.
func (s *Stack) keepOnly(id int) {
	for i := range s.words {
		s.words[i] = 0
	}
	s.words[id/64] = uint64(1) << uint(id%64)
	s.count = 1
}

// nth returns the n-th member in ascending ID order, or -1.
func (s *Stack) nth(n int) int {
	if n < 0 || n >= s.count {
		return -1
	}
	for w, word := range s.words {
		c := bits.OnesCount64(word)
		if n >= c {
			n -= c
			continue
		}
		for ; n > 0; n-- {
			word &= word - 1 // drop lowest set bit
		}
		return w*64 + bits.TrailingZeros64(word)
	}
	return -1
}

// Members returns the candidate IDs in ascending order.
func (s *Stack) Members() []int {
	ids := make([]int, 0, s.count)
	for w, word := range s.words {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			word &^= uint64(1) << uint(b)
			ids = append(ids, w*64+b)
		}
	}
	return ids
}

// eachDescending calls fn for every member from highest ID to lowest. fn may
// remove the member it is given.
func (s *Stack) eachDescending(fn func(id int)) {
	for w := len(s.words) - 1; w >= 0; w-- {
		word := s.words[w]
		for word != 0 {
			b := 63 - bits.LeadingZeros64(word)
			word &^= uint64(1) << uint(b)
			fn(w*64 + b)
		}
	}
}
