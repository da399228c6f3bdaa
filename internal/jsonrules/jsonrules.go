// Package jsonrules defines the JSON grammar on top of the rule engine.
//
//	value         := "[" <elements>* "]" | "{" <members>* "}" | <string> | <number>
//	               | "true" | "false" | "null"
//	elements      := <value> <elements-tail> | <value> | ε
//	elements-tail := "," <value> <elements-tail> | ε
//	member        := <string> ":" <value>
//	members       := <member> <members-tail> | <member> | ε
//	members-tail  := "," <member> <members-tail> | ε
//	string        := STRING token
//	number        := NUMBER token
package jsonrules

import (
	"slices"
	"strconv"
	"sync"

	"github.com/golangsnmp/descent/internal/grammar"
	"github.com/golangsnmp/descent/internal/lexer"
	"github.com/golangsnmp/descent/value"
)

// Rule names.
const (
	RuleValue    = "value"
	RuleElements = "elements"
	RuleMember   = "member"
	RuleMembers  = "members"
	RuleString   = "string"
	RuleNumber   = "number"

	// TopRule is the rule a document must match.
	TopRule = RuleValue
)

const (
	stringPattern = `"(?:[^"\\]|\\.)*"`
	numberPattern = `-?[0-9]+(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?`
)

// Node is the value type threaded through the JSON rules. Only one field
// is meaningful for a given rule: Value for value/string/number, Items for
// elements, Member for member and Members for members.
//
// Items and Members are accumulated in reverse order, because the
// continuation rule returns the rest of the list before the item in front
// of it is known; the container clauses of value restore source order.
type Node struct {
	Value   value.Value
	Items   []value.Value
	Member  value.Member
	Members []value.Member
}

// Grammar returns the process-wide JSON grammar.
var Grammar = sync.OnceValue(func() *grammar.Grammar[Node] {
	return newBuilder().MustBuild()
})

func newBuilder() *grammar.Builder[Node] {
	b := grammar.NewBuilder[Node]()

	b.Rule(RuleValue,
		grammar.Seq(buildArray, grammar.Lit("["), grammar.Star(RuleElements), grammar.Lit("]")),
		grammar.Seq(buildObject, grammar.Lit("{"), grammar.Star(RuleMembers), grammar.Lit("}")),
		grammar.Seq(passValue, grammar.Ref(RuleString)),
		grammar.Seq(passValue, grammar.Ref(RuleNumber)),
		grammar.Seq(constant(value.Bool(true)), grammar.Lit("true")),
		grammar.Seq(constant(value.Bool(false)), grammar.Lit("false")),
		grammar.Seq(constant(value.Null()), grammar.Lit("null")),
	)

	b.Repeat(RuleElements, RuleValue, ",", grammar.ListOps[Node]{
		Empty: func() Node { return Node{} },
		One:   func(item Node) Node { return Node{Items: []value.Value{item.Value}} },
		Cons: func(item, rest Node) Node {
			return Node{Items: append(rest.Items, item.Value)}
		},
	})

	b.Rule(RuleMember,
		grammar.Seq(func(a grammar.Args[Node]) (Node, bool) {
			key, _ := a.Value(0).Value.AsString()
			return Node{Member: value.Member{Key: key, Value: a.Value(2).Value}}, true
		}, grammar.Ref(RuleString), grammar.Lit(":"), grammar.Ref(RuleValue)),
	)

	b.Repeat(RuleMembers, RuleMember, ",", grammar.ListOps[Node]{
		Empty: func() Node { return Node{} },
		One:   func(item Node) Node { return Node{Members: []value.Member{item.Member}} },
		Cons: func(item, rest Node) Node {
			return Node{Members: append(rest.Members, item.Member)}
		},
	})

	b.Rule(RuleString,
		grammar.Seq(func(a grammar.Args[Node]) (Node, bool) {
			text, ok := Unquote(a.Text(0))
			if !ok {
				return Node{}, false
			}
			return Node{Value: value.String(text)}, true
		}, grammar.Match(lexer.TokString, stringPattern)),
	)

	b.Rule(RuleNumber,
		grammar.Seq(func(a grammar.Args[Node]) (Node, bool) {
			n, err := strconv.ParseFloat(a.Text(0), 64)
			if err != nil {
				return Node{}, false
			}
			return Node{Value: value.Number(n)}, true
		}, grammar.Match(lexer.TokNumber, numberPattern)),
	)

	return b
}

func buildArray(a grammar.Args[Node]) (Node, bool) {
	items := a.Value(1).Items
	slices.Reverse(items)
	return Node{Value: value.Array(items...)}, true
}

func buildObject(a grammar.Args[Node]) (Node, bool) {
	members := a.Value(1).Members
	slices.Reverse(members)
	return Node{Value: value.ObjectFromPairs(members)}, true
}

func passValue(a grammar.Args[Node]) (Node, bool) {
	return a.Value(0), true
}

func constant(v value.Value) grammar.BuildFunc[Node] {
	return func(grammar.Args[Node]) (Node, bool) {
		return Node{Value: v}, true
	}
}
