package oursh

import (
	"slices"
	"strings"
)

// Trie is a prefix tree of names. Walks visit children in rune order, so
// every listing it returns is lexicographically sorted.
type Trie struct {
	root *trieNode
	size int
}

type trieNode struct {
	children map[rune]*trieNode
	terminal bool
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{root: &trieNode{}}
}

// Insert adds word and reports whether it was not present yet.
func (t *Trie) Insert(word string) bool {
	node := t.root
	for _, r := range word {
		if node.children == nil {
			node.children = make(map[rune]*trieNode)
		}
		next, ok := node.children[r]
		if !ok {
			next = &trieNode{}
			node.children[r] = next
		}
		node = next
	}
	if node.terminal {
		return false
	}
	node.terminal = true
	t.size++
	return true
}

// Len returns the number of distinct words.
func (t *Trie) Len() int {
	return t.size
}

// Contains reports whether word was inserted.
func (t *Trie) Contains(word string) bool {
	node := t.lookup(word)
	return node != nil && node.terminal
}

// WithPrefix returns every word starting with prefix in sorted order.
func (t *Trie) WithPrefix(prefix string) []string {
	node := t.lookup(prefix)
	if node == nil {
		return nil
	}
	var words []string
	var sb strings.Builder
	sb.WriteString(prefix)
	node.walk(&sb, &words)
	return words
}

// CommonPrefix returns the longest string shared by every word starting
// with prefix. It is "" when no word starts with prefix.
func (t *Trie) CommonPrefix(prefix string) string {
	node := t.lookup(prefix)
	if node == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(prefix)
	for !node.terminal && len(node.children) == 1 {
		for r, child := range node.children {
			sb.WriteRune(r)
			node = child
		}
	}
	return sb.String()
}

func (t *Trie) lookup(prefix string) *trieNode {
	node := t.root
	for _, r := range prefix {
		next, ok := node.children[r]
		if !ok {
			return nil
		}
		node = next
	}
	return node
}

func (n *trieNode) walk(sb *strings.Builder, words *[]string) {
	if n.terminal {
		*words = append(*words, sb.String())
	}
	keys := make([]rune, 0, len(n.children))
	for r := range n.children {
		keys = append(keys, r)
	}
	slices.Sort(keys)
	for _, r := range keys {
		base := sb.Len()
		sb.WriteRune(r)
		n.children[r].walk(sb, words)
		prefix := sb.String()[:base]
		sb.Reset()
		sb.WriteString(prefix)
	}
}
