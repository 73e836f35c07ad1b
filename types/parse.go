// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package types

import (
	"strings"
	"unicode"

	"github.com/featurebasedb/streamsql"
)

// ParsePrimitiveType resolves a primitive type token. Tokens are matched
// case-insensitively; INT and STRING are accepted as aliases of INTEGER and
// VARCHAR.
func ParsePrimitiveType(token string) (DataType, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "BOOLEAN":
		return NewDataTypeBoolean(), nil
	case "INT", "INTEGER":
		return NewDataTypeInteger(), nil
	case "BIGINT":
		return NewDataTypeBigint(), nil
	case "DOUBLE":
		return NewDataTypeDouble(), nil
	case "VARCHAR", "STRING":
		return NewDataTypeString(), nil
	default:
		return nil, streamsql.NewErrUnknownType(token)
	}
}

// ParseType resolves a full type specification such as
// "ARRAY<DOUBLE>", "MAP<VARCHAR, BIGINT>" or "STRUCT<NAME VARCHAR, AGE INT>".
func ParseType(spec string) (DataType, error) {
	p := &typeParser{spec: spec, toks: tokenize(spec)}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, streamsql.NewErrUnknownTypeSpec(spec, "unexpected '"+p.peek()+"'")
	}
	return t, nil
}

// ParseFields parses a comma separated list of "NAME TYPE" pairs.
func ParseFields(spec string) ([]*StructField, error) {
	p := &typeParser{spec: spec, toks: tokenize(spec)}
	if p.eof() {
		return []*StructField{}, nil
	}
	fields, err := p.parseFieldList()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, streamsql.NewErrUnknownTypeSpec(spec, "unexpected '"+p.peek()+"'")
	}
	return fields, nil
}

type typeParser struct {
	spec string
	toks []string
	pos  int
}

func (p *typeParser) eof() bool {
	return p.pos >= len(p.toks)
}

func (p *typeParser) peek() string {
	if p.eof() {
		return ""
	}
	return p.toks[p.pos]
}

func (p *typeParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *typeParser) expect(tok string) error {
	if got := p.next(); got != tok {
		if got == "" {
			return streamsql.NewErrUnknownTypeSpec(p.spec, "expected '"+tok+"' at end of input")
		}
		return streamsql.NewErrUnknownTypeSpec(p.spec, "expected '"+tok+"', got '"+got+"'")
	}
	return nil
}

func (p *typeParser) parseType() (DataType, error) {
	if p.eof() {
		return nil, streamsql.NewErrUnknownTypeSpec(p.spec, "type expected")
	}
	tok := p.next()
	switch strings.ToUpper(tok) {
	case BaseTypeArray:
		if err := p.expect("<"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
		return NewDataTypeArray(elem), nil

	case BaseTypeMap:
		if err := p.expect("<"); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, ok := key.(*DataTypeString); !ok {
			return nil, streamsql.NewErrInvalidMapKey(key.TypeDescription())
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		value, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
		return NewDataTypeMap(value), nil

	case BaseTypeStruct:
		if err := p.expect("<"); err != nil {
			return nil, err
		}
		fields := []*StructField{}
		if p.peek() != ">" {
			var err error
			if fields, err = p.parseFieldList(); err != nil {
				return nil, err
			}
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
		return NewDataTypeStruct(fields), nil

	default:
		return ParsePrimitiveType(tok)
	}
}

func (p *typeParser) parseFieldList() ([]*StructField, error) {
	var fields []*StructField
	for {
		name := p.next()
		if name == "" || isPunct(name) {
			return nil, streamsql.NewErrUnknownTypeSpec(p.spec, "field name expected")
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, NewStructField(name, typ))
		if p.peek() != "," {
			return fields, nil
		}
		p.next()
	}
}

func isPunct(tok string) bool {
	return tok == "<" || tok == ">" || tok == ","
}

func tokenize(s string) []string {
	var toks []string
	start := -1
	flush := func(i int) {
		if start >= 0 {
			toks = append(toks, s[start:i])
			start = -1
		}
	}
	for i, r := range s {
		switch {
		case unicode.IsSpace(r):
			flush(i)
		case r == '<' || r == '>' || r == ',':
			flush(i)
			toks = append(toks, string(r))
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(s))
	return toks
}
