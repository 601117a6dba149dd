package history

// Set is an insertion-ordered set of URLs. Oldest first.
//
// It is not safe for concurrent use; a run owns its Set.
type Set struct {
	urls  []string
	index map[string]struct{}
}

// NewSet builds a set from urls, dropping empty strings and repeats
// (the first occurrence keeps its position).
func NewSet(urls []string) *Set {
	s := &Set{
		urls:  make([]string, 0, len(urls)),
		index: make(map[string]struct{}, len(urls)),
	}
	for _, u := range urls {
		s.Add(u)
	}
	return s
}

func (s *Set) Contains(url string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[url]
	return ok
}

// Add appends url and reports whether it was new.
func (s *Set) Add(url string) bool {
	if url == "" {
		return false
	}
	if s.index == nil {
		s.index = map[string]struct{}{}
	}
	if _, ok := s.index[url]; ok {
		return false
	}
	s.index[url] = struct{}{}
	s.urls = append(s.urls, url)
	return true
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.urls)
}

// URLs returns a copy of the entries, oldest first.
func (s *Set) URLs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.urls...)
}

// Tail returns a copy of the newest n entries, oldest first.
func (s *Set) Tail(n int) []string {
	if s == nil || n <= 0 {
		return nil
	}
	if n >= len(s.urls) {
		return s.URLs()
	}
	return append([]string(nil), s.urls[len(s.urls)-n:]...)
}

// Truncate drops all but the newest n entries and returns how many were dropped.
func (s *Set) Truncate(n int) int {
	if s == nil || n < 0 || len(s.urls) <= n {
		return 0
	}
	drop := len(s.urls) - n
	for _, u := range s.urls[:drop] {
		delete(s.index, u)
	}
	s.urls = append([]string(nil), s.urls[drop:]...)
	return drop
}
