package grammar

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nihei9/lltable/grammar"
	"github.com/qri-io/jsonschema"
	"go.uber.org/multierr"
)

type SchemaKind string

const (
	SchemaKindGrammar     = SchemaKind("grammar")
	SchemaKindFirstFollow = SchemaKind("first_follow")
	SchemaKindTable       = SchemaKind("table")
	SchemaKindTokens      = SchemaKind("tokens")
)

const grammarSchema = `{
	"type": "object",
	"required": ["terminals", "non_terminals", "start_symbol", "productions"],
	"properties": {
		"terminals": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		},
		"non_terminals": {
			"type": "array",
			"minItems": 1,
			"items": {"type": "string", "minLength": 1}
		},
		"start_symbol": {"type": "string", "minLength": 1},
		"productions": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["parent", "rules"],
				"properties": {
					"parent": {"type": "string", "minLength": 1},
					"rules": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "array",
							"items": {"type": "string", "minLength": 1}
						}
					}
				}
			}
		}
	}
}`

const firstFollowSchema = `{
	"type": "object",
	"required": ["first", "follow"],
	"properties": {
		"first": {
			"type": "object",
			"additionalProperties": {"type": "array", "items": {"type": "string"}}
		},
		"follow": {
			"type": "object",
			"additionalProperties": {"type": "array", "items": {"type": "string"}}
		}
	}
}`

const tableSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"additionalProperties": {
			"type": "string",
			"pattern": "^(error|synch|[0-9]+)$"
		}
	}
}`

const tokensSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["type"],
		"properties": {
			"type": {"type": "string", "minLength": 1},
			"value": {"type": "string"},
			"line": {"type": "integer", "minimum": 0},
			"error": {"type": "boolean"}
		}
	}
}`

var (
	schemasOnce sync.Once
	schemas     map[SchemaKind]*jsonschema.Schema
	schemasErr  error
)

func loadSchemas() (map[SchemaKind]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		srcs := map[SchemaKind]string{
			SchemaKindGrammar:     grammarSchema,
			SchemaKindFirstFollow: firstFollowSchema,
			SchemaKindTable:       tableSchema,
			SchemaKindTokens:      tokensSchema,
		}
		schemas = map[SchemaKind]*jsonschema.Schema{}
		for kind, src := range srcs {
			rs := &jsonschema.Schema{}
			err := json.Unmarshal([]byte(src), rs)
			if err != nil {
				schemasErr = multierr.Append(schemasErr, fmt.Errorf("invalid %v schema: %w", kind, err))
				continue
			}
			schemas[kind] = rs
		}
	})
	return schemas, schemasErr
}

// Validate checks a JSON document against the schema of kind. All the violations are returned together.
func Validate(ctx context.Context, kind SchemaKind, data []byte) error {
	ss, err := loadSchemas()
	if err != nil {
		return err
	}
	rs, ok := ss[kind]
	if !ok {
		return fmt.Errorf("unknown schema: %v", kind)
	}
	keyErrs, err := rs.ValidateBytes(ctx, data)
	if err != nil {
		return fmt.Errorf("invalid %v JSON: %w", kind, err)
	}
	var errs error
	for _, e := range keyErrs {
		errs = multierr.Append(errs, fmt.Errorf("invalid %v JSON: %v", kind, e.Error()))
	}
	return errs
}

func decode(ctx context.Context, kind SchemaKind, data []byte, v interface{}) error {
	err := Validate(ctx, kind, data)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// LoadGrammar validates and decodes a grammar JSON.
func LoadGrammar(ctx context.Context, data []byte) (*grammar.Grammar, error) {
	g := &Grammar{}
	err := decode(ctx, SchemaKindGrammar, data, g)
	if err != nil {
		return nil, err
	}
	return g.Build()
}

// LoadFirstFollow validates and decodes FIRST and FOLLOW sets of gram.
func LoadFirstFollow(ctx context.Context, gram *grammar.Grammar, data []byte) (*grammar.FirstSet, *grammar.FollowSet, error) {
	ff := &FirstFollow{}
	err := decode(ctx, SchemaKindFirstFollow, data, ff)
	if err != nil {
		return nil, nil, err
	}
	return ff.Build(gram)
}

// LoadTable validates and decodes a parsing table of gram.
func LoadTable(ctx context.Context, gram *grammar.Grammar, data []byte) (*grammar.ParsingTable, error) {
	t := Table{}
	err := decode(ctx, SchemaKindTable, data, &t)
	if err != nil {
		return nil, err
	}
	return t.Build(gram)
}

func LoadTokens(ctx context.Context, data []byte) ([]*Token, error) {
	var ts []*Token
	err := decode(ctx, SchemaKindTokens, data, &ts)
	if err != nil {
		return nil, err
	}
	return ts, nil
}
