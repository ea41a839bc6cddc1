package identity

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Identity is the classified form of a session-carried identity value.
// The concrete type is always one of NumericID, ProviderID or Unparseable.
type Identity interface {
	identity()
}

// NumericID is a canonical internal user id.
type NumericID int64

// ProviderID is an external provider subject such as "google_999".
type ProviderID string

// Unparseable holds a raw value of any other shape.
type Unparseable struct {
	Raw any
}

func (NumericID) identity()   {}
func (ProviderID) identity()  {}
func (Unparseable) identity() {}

// DefaultProviderPrefixes are recognized when no prefixes are configured.
var DefaultProviderPrefixes = []string{"google_", "github_", "user_"}

// Parser classifies raw identity values.
type Parser struct {
	prefixes []string
}

// NewParser returns a parser recognizing the given provider prefixes, or
// DefaultProviderPrefixes when none are given. Empty prefixes are ignored.
func NewParser(prefixes ...string) Parser {
	clean := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			clean = append(clean, p)
		}
	}
	if len(clean) == 0 {
		clean = DefaultProviderPrefixes
	}
	return Parser{prefixes: clean}
}

// Parse classifies raw with the default provider prefixes.
func Parse(raw any) Identity {
	return NewParser().Parse(raw)
}

// Parse never panics and never guesses: values that are not exactly an
// integer, a digit-only string or a prefixed provider subject are Unparseable.
func (p Parser) Parse(raw any) Identity {
	switch v := raw.(type) {
	case int:
		return NumericID(v)
	case int8:
		return NumericID(v)
	case int16:
		return NumericID(v)
	case int32:
		return NumericID(v)
	case int64:
		return NumericID(v)
	case uint:
		return fromUint(uint64(v), raw)
	case uint8:
		return NumericID(v)
	case uint16:
		return NumericID(v)
	case uint32:
		return NumericID(v)
	case uint64:
		return fromUint(v, raw)
	case float32:
		return fromFloat(float64(v), raw)
	case float64:
		return fromFloat(v, raw)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return NumericID(n)
		}
		return Unparseable{Raw: raw}
	case string:
		return p.parseString(v)
	default:
		return Unparseable{Raw: raw}
	}
}

func (p Parser) parseString(s string) Identity {
	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Unparseable{Raw: s}
		}
		return NumericID(n)
	}

	for _, prefix := range p.prefixes {
		if len(s) > len(prefix) && strings.HasPrefix(s, prefix) {
			return ProviderID(s)
		}
	}

	return Unparseable{Raw: s}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func fromUint(v uint64, raw any) Identity {
	if v > math.MaxInt64 {
		return Unparseable{Raw: raw}
	}
	return NumericID(v)
}

// JSON decoders without UseNumber hand integers over as float64.
func fromFloat(v float64, raw any) Identity {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return Unparseable{Raw: raw}
	}
	if v < math.MinInt64 || v >= math.MaxInt64 {
		return Unparseable{Raw: raw}
	}
	return NumericID(int64(v))
}
