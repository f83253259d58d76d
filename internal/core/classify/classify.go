// Package classify decides whether a rektbot post reports a long or a short
// liquidation and pulls the dollar notional out of it
package classify

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the liquidation side of a post
type Kind string

const (
	// None means the post is not a liquidation report
	None Kind = ""
	// Long is a long position liquidation
	Long Kind = "long"
	// Short is a short position liquidation
	Short Kind = "short"
)

// Valid reports whether k is a storable kind
func (k Kind) Valid() bool { return k == Long || k == Short }

func (k Kind) String() string {
	if k == None {
		return "none"
	}
	return string(k)
}

// a Caser carries state and is not safe for concurrent use
var lowerPool = sync.Pool{
	New: func() any { c := cases.Lower(language.Und); return &c },
}

func lower(s string) string {
	c := lowerPool.Get().(*cases.Caser)
	out := c.String(s)
	c.Reset()
	lowerPool.Put(c)
	return out
}

// Classify returns Long, Short or None for a post body.
// Long is tested first so a post matching both reads as Long.
func Classify(content string) Kind {
	s := lower(strings.TrimSpace(content))
	switch {
	case s == "":
		return None
	case strings.Contains(s, "long rekt") || strings.HasPrefix(s, "long "):
		return Long
	case strings.Contains(s, "short rekt") || strings.HasPrefix(s, "short "):
		return Short
	default:
		return None
	}
}

// Parse parses a stored kind name
func Parse(s string) (Kind, bool) {
	switch Kind(lower(strings.TrimSpace(s))) {
	case Long:
		return Long, true
	case Short:
		return Short, true
	}
	return None, false
}
