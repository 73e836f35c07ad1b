// Copyright 2022 Molecula Corp. All rights reserved.
package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/row"
	"github.com/featurebasedb/streamsql/types"
)

// likeStrategy is the string operation a LIKE compiles to.
type likeStrategy uint8

const (
	likeEquals   likeStrategy = iota // foo
	likePrefix                       // foo%
	likeSuffix                       // %foo
	likeContains                     // %foo%
	likeDynamic                      // pattern is not a literal
)

var likeStrategyNames = [...]string{"equals", "startsWith", "endsWith", "contains", "like"}

func (s likeStrategy) String() string {
	return likeStrategyNames[s]
}

// planLiteralLike picks the strategy for a literal pattern. Only one leading
// and one trailing '%' are wildcards; any other '%' is matched literally.
func planLiteralLike(pattern string) (likeStrategy, string) {
	leading := strings.HasPrefix(pattern, "%")
	trailing := len(pattern) > 1 && strings.HasSuffix(pattern, "%")
	switch {
	case leading && trailing:
		return likeContains, pattern[1 : len(pattern)-1]
	case trailing:
		return likePrefix, pattern[:len(pattern)-1]
	case leading:
		return likeSuffix, pattern[1:]
	default:
		return likeEquals, pattern
	}
}

// likePlanExpression matches a string against a pattern. A null value or
// pattern does not match.
type likePlanExpression struct {
	lhs      planExpression
	pattern  planExpression
	strategy likeStrategy
	needle   string
}

func newLikePlanExpression(lhs planExpression, pattern planExpression) *likePlanExpression {
	n := &likePlanExpression{
		lhs:      lhs,
		pattern:  pattern,
		strategy: likeDynamic,
	}
	if lit, ok := pattern.(*literalPlanExpression); ok {
		if s, ok := lit.value.(string); ok {
			n.strategy, n.needle = planLiteralLike(s)
		}
	}
	return n
}

func (n *likePlanExpression) Evaluate(currentRow *row.Row) (interface{}, error) {
	lhs, err := n.lhs.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	if lhs == nil {
		return false, nil
	}
	s, ok := lhs.(string)
	if !ok {
		return nil, streamsql.NewErrInternalf("unexpected like operand type '%T'", lhs)
	}

	switch n.strategy {
	case likeEquals:
		return s == n.needle, nil
	case likePrefix:
		return strings.HasPrefix(s, n.needle), nil
	case likeSuffix:
		return strings.HasSuffix(s, n.needle), nil
	case likeContains:
		return strings.Contains(s, n.needle), nil
	}

	p, err := n.pattern.Evaluate(currentRow)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return false, nil
	}
	pattern, ok := p.(string)
	if !ok {
		return nil, streamsql.NewErrInternalf("unexpected like pattern type '%T'", p)
	}
	return matchLike(s, planLike(pattern)...), nil
}

func (n *likePlanExpression) Type() types.DataType {
	return types.NewDataTypeBoolean()
}

func (n *likePlanExpression) String() string {
	if n.strategy == likeDynamic {
		return fmt.Sprintf("((%s == null) ? false : like(%s, %s))", n.lhs, n.lhs, n.pattern)
	}
	return fmt.Sprintf("((%s == null) ? false : %s.%s(%s))", n.lhs, n.lhs, n.strategy, strconv.Quote(n.needle))
}

func (n *likePlanExpression) Plan() map[string]interface{} {
	result := make(map[string]interface{})
	result["_expr"] = fmt.Sprintf("%T", n)
	result["strategy"] = n.strategy.String()
	if n.strategy != likeDynamic {
		result["needle"] = n.needle
	}
	result["lhs"] = n.lhs.Plan()
	result["pattern"] = n.pattern.Plan()
	return result
}

func (n *likePlanExpression) Children() []planExpression {
	return []planExpression{n.lhs, n.pattern}
}

// likeStepKind is a kind of step in a like filter.
type likeStepKind uint8

const (
	likeStepPrefix      likeStepKind = iota // x...
	likeStepSkipThrough                     // %x...
	likeStepSuffix                          // %x
	likeStepRest                            // %
)

// likeStep is a step in a like filter.
type likeStep struct {
	kind likeStepKind
	str  string
}

// tokenizeLike splits a pattern into literal tokens and "%" placeholders.
// Runs of '%' collapse into a single placeholder.
func tokenizeLike(like string) []string {
	var tokens []string
	for like != "" {
		var token string
		i := strings.IndexByte(like, '%')
		switch i {
		case 0:
			j := 1
			for j < len(like) && like[j] == '%' {
				j++
			}
			token, like = "%", like[j:]
		case -1:
			token, like = like, ""
		default:
			token, like = like[:i], like[i:]
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// planLike generates a filtering plan for a pattern in which every '%'
// matches any sequence of characters.
func planLike(like string) []likeStep {
	tokens := tokenizeLike(like)

	steps := make([]likeStep, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch {
		case t == "%" && i+1 < len(tokens):
			steps = append(steps, likeStep{kind: likeStepSkipThrough, str: tokens[i+1]})
			i++
		case t == "%":
			steps = append(steps, likeStep{kind: likeStepRest})
		default:
			steps = append(steps, likeStep{kind: likeStepPrefix, str: t})
		}
	}

	if len(steps) > 0 && steps[len(steps)-1].kind == likeStepSkipThrough {
		steps[len(steps)-1].kind = likeStepSuffix
	}
	return steps
}

// matchLike matches a string using a like plan.
func matchLike(key string, like ...likeStep) bool {
	for i, step := range like {
		switch step.kind {
		case likeStepPrefix:
			if !strings.HasPrefix(key, step.str) {
				return false
			}
			key = key[len(step.str):]
		case likeStepSkipThrough:
			// Try every occurrence until the rest of the pattern matches.
			remaining := like[i+1:]
			for {
				j := strings.Index(key, step.str)
				if j == -1 {
					return false
				}
				key = key[j:]
				if matchLike(key[len(step.str):], remaining...) {
					return true
				}
				key = key[1:]
			}
		case likeStepSuffix:
			return strings.HasSuffix(key, step.str)
		case likeStepRest:
			return true
		}
	}

	// If there is any unmatched data left, this is not a match.
	return len(key) == 0
}
