package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the classified goal of a chat turn.
type Kind string

const (
	KindRead           Kind = "read"
	KindSummarize      Kind = "summarize"
	KindReply          Kind = "reply"
	KindDelete         Kind = "delete"
	KindDigest         Kind = "digest"
	KindGroup          Kind = "group"
	KindShowCategories Kind = "show_categories"
	KindGreeting       Kind = "greeting"
	KindHelp           Kind = "help"
	KindUnknown        Kind = "unknown"
)

var kinds = []Kind{
	KindRead, KindSummarize, KindReply, KindDelete, KindDigest,
	KindGroup, KindShowCategories, KindGreeting, KindHelp, KindUnknown,
}

func validKind(k Kind) bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Parameters are the loosely typed values extracted alongside an intent.
type Parameters map[string]any

// Int returns the integer stored under key, or def when it is missing or not
// a whole number.
func (p Parameters) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}

	return def
}

// Intent is the resolved goal of one turn.
type Intent struct {
	Kind       Kind
	Parameters Parameters
	Confidence float64
}

const (
	ruleConfidence   = 0.7
	defaultNumEmails = 5
	maxNumEmails     = 50
)

// Extractor turns free text into an Intent. It asks the model first and
// falls back to keyword rules; it never fails.
type Extractor struct {
	gen Generator
}

func NewExtractor(gen Generator) *Extractor {
	return &Extractor{gen: gen}
}

func (e *Extractor) Extract(ctx context.Context, message string) Intent {
	if e.gen != nil {
		out, err := e.gen.Generate(ctx, intentPrompt(message))
		if err == nil {
			in, perr := parseIntent(out)
			if perr == nil {
				return in
			}
			err = perr
		}
		log.Printf("intent extraction fell back to rules: %v", err)
	}

	return ruleIntent(message)
}

var (
	errNoJSON        = errors.New("no json object in model output")
	errBadKind       = errors.New("unknown intent kind")
	errBadConfidence = errors.New("confidence missing or out of range")
)

type modelIntent struct {
	Intent     string          `json:"intent"`
	Parameters json.RawMessage `json:"parameters"`
	Confidence *float64        `json:"confidence"`
}

// parseIntent treats model output as untrusted: the first span that decodes
// as an object is taken and then validated field by field. Anything after
// that object is ignored.
func parseIntent(out string) (Intent, error) {
	mi, err := firstObject(out)
	if err != nil {
		return Intent{}, err
	}

	kind := Kind(strings.ToLower(strings.TrimSpace(mi.Intent)))
	if !validKind(kind) {
		return Intent{}, fmt.Errorf("%w: %q", errBadKind, mi.Intent)
	}

	if mi.Confidence == nil || *mi.Confidence < 0 || *mi.Confidence > 1 {
		return Intent{}, errBadConfidence
	}

	params := Parameters{}
	if len(mi.Parameters) > 0 && string(mi.Parameters) != "null" {
		if err := json.Unmarshal(mi.Parameters, &params); err != nil {
			return Intent{}, fmt.Errorf("parameters are not an object: %w", err)
		}
	}

	return Intent{Kind: kind, Parameters: params, Confidence: *mi.Confidence}, nil
}

// firstObject decodes the first syntactically complete JSON object in out.
// Field type errors in that object are not retried against later spans.
func firstObject(out string) (modelIntent, error) {
	for i := strings.IndexByte(out, '{'); i >= 0; {
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(out[i:])).Decode(&raw); err == nil {
			var mi modelIntent
			if err := json.Unmarshal(raw, &mi); err != nil {
				return modelIntent{}, fmt.Errorf("json.Unmarshal failed: %w", err)
			}
			return mi, nil
		}

		next := strings.IndexByte(out[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return modelIntent{}, errNoJSON
}

type rule struct {
	match func(msg string) bool
	kind  Kind
}

// words matches any of the given single words as whole words.
func words(list ...string) func(string) bool {
	re := regexp.MustCompile(`\b(?:` + strings.Join(list, "|") + `)\b`)
	return re.MatchString
}

// phrases matches any of the given phrases as substrings.
func phrases(list ...string) func(string) bool {
	return func(msg string) bool {
		for _, p := range list {
			if strings.Contains(msg, p) {
				return true
			}
		}
		return false
	}
}

func either(a, b func(string) bool) func(string) bool {
	return func(msg string) bool { return a(msg) || b(msg) }
}

// rules are evaluated in order against the lowercased message; the first
// match wins.
var rules = []rule{
	{words("read", "show", "list", "display", "view"), KindRead},
	{words("summarize", "summary", "summarise"), KindSummarize},
	{words("reply", "respond", "answer", "compose"), KindReply},
	{words("delete", "remove", "trash"), KindDelete},
	{words("digest", "today", "daily", "overview"), KindDigest},
	{phrases("categorize mails", "categorize emails"), KindShowCategories},
	{words("group", "categorize", "category", "organize"), KindGroup},
	{words("hello", "hi", "hey", "greetings"), KindGreeting},
	{either(words("help", "capabilities"), phrases("what can")), KindHelp},
}

var firstNumber = regexp.MustCompile(`\d+`)

func ruleIntent(message string) Intent {
	msg := strings.ToLower(message)

	in := Intent{Kind: KindUnknown, Parameters: Parameters{}, Confidence: ruleConfidence}
	for _, r := range rules {
		if r.match(msg) {
			in.Kind = r.kind
			break
		}
	}

	if in.Kind == KindRead || in.Kind == KindSummarize {
		n := defaultNumEmails
		if m := firstNumber.FindString(msg); m != "" {
			if v, err := strconv.Atoi(m); err == nil {
				n = v
			}
		}
		in.Parameters["num_emails"] = n
	}

	return in
}

// numEmails reads num_emails with the default applied and clamped to the
// supported range.
func numEmails(p Parameters) int {
	n := p.Int("num_emails", defaultNumEmails)
	return min(max(n, 1), maxNumEmails)
}
