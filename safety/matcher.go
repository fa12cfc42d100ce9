package safety

// Matcher finds which of several phrase categories occur in a text. All
// phrases of all categories are compiled into one Aho–Corasick automaton so
// a text is scanned once regardless of list sizes. Matching is over bytes,
// plain substring, with no word boundaries; callers lowercase both sides.
//
// A Matcher is immutable after construction and safe for concurrent use.
type Matcher struct {
	nodes []acNode
}

type acNode struct {
	next map[byte]int
	fail int
	// out is the lowest category index of any phrase ending here, including
	// phrases reachable through fail links; -1 if none.
	out    int
	phrase string
}

// Match is the outcome of a scan.
type Match struct {
	Category int    // index into the category slice given to NewMatcher
	Phrase   string // a phrase of that category found in the text
}

// NewMatcher compiles categories; earlier categories take priority.
func NewMatcher(categories ...[]string) *Matcher {
	m := &Matcher{nodes: []acNode{newNode()}}
	for cat, phrases := range categories {
		for _, p := range phrases {
			if p == "" {
				continue
			}
			m.insert(p, cat)
		}
	}
	m.link()
	return m
}

func newNode() acNode {
	return acNode{next: map[byte]int{}, out: -1}
}

func (m *Matcher) insert(p string, cat int) {
	cur := 0
	for i := 0; i < len(p); i++ {
		nxt, ok := m.nodes[cur].next[p[i]]
		if !ok {
			m.nodes = append(m.nodes, newNode())
			nxt = len(m.nodes) - 1
			m.nodes[cur].next[p[i]] = nxt
		}
		cur = nxt
	}
	if n := &m.nodes[cur]; n.out == -1 || cat < n.out {
		n.out = cat
		n.phrase = p
	}
}

// link builds fail links breadth-first and folds outputs along them.
func (m *Matcher) link() {
	queue := make([]int, 0, len(m.nodes))
	for _, child := range m.nodes[0].next {
		m.nodes[child].fail = 0
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for c, child := range m.nodes[cur].next {
			f := m.nodes[cur].fail
			for {
				if nxt, ok := m.nodes[f].next[c]; ok && nxt != child {
					m.nodes[child].fail = nxt
					break
				}
				if f == 0 {
					m.nodes[child].fail = 0
					break
				}
				f = m.nodes[f].fail
			}
			fl := m.nodes[m.nodes[child].fail]
			if fl.out != -1 && (m.nodes[child].out == -1 || fl.out < m.nodes[child].out) {
				m.nodes[child].out = fl.out
				m.nodes[child].phrase = fl.phrase
			}
			queue = append(queue, child)
		}
	}
}

// Find scans text once and returns the highest-priority category found.
func (m *Matcher) Find(text string) (Match, bool) {
	best := Match{Category: -1}
	cur := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		for {
			if nxt, ok := m.nodes[cur].next[c]; ok {
				cur = nxt
				break
			}
			if cur == 0 {
				break
			}
			cur = m.nodes[cur].fail
		}
		if n := m.nodes[cur]; n.out != -1 && (best.Category == -1 || n.out < best.Category) {
			best = Match{Category: n.out, Phrase: n.phrase}
			if best.Category == 0 {
				break
			}
		}
	}
	return best, best.Category != -1
}

// Contains reports whether any phrase occurs in text.
func (m *Matcher) Contains(text string) bool {
	_, ok := m.Find(text)
	return ok
}
