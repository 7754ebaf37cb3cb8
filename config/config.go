package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/nihei9/lltable/driver/lexer"
	"github.com/nihei9/lltable/driver/parser"
	"github.com/nihei9/lltable/grammar"
	"github.com/spf13/afero"
)

// Config contains configuration options of the lltable command.
type Config struct {
	Log       Log       `toml:"log" json:"log"`
	Transform Transform `toml:"transform" json:"transform"`
	Table     Table     `toml:"table" json:"table"`
	Parser    Parser    `toml:"parser" json:"parser"`
	Lexer     Lexer     `toml:"lexer" json:"lexer"`
	Cache     Cache     `toml:"cache" json:"cache"`
}

type Log struct {
	// Level is one of Debug, Info, and Error.
	Level string `toml:"level" json:"level"`
}

type Transform struct {
	EliminateLeftRecursion bool `toml:"eliminate_left_recursion" json:"eliminate_left_recursion"`
	LeftFactoring          bool `toml:"left_factoring" json:"left_factoring"`

	// GroupByLeadingSymbol makes left factoring group rules by their first symbol instead of whole prefixes.
	GroupByLeadingSymbol bool `toml:"group_by_leading_symbol" json:"group_by_leading_symbol"`
}

const (
	LookaheadFirstSymbol = "first-symbol"
	LookaheadSequence    = "sequence"

	RecoverySkip = "skip"
	RecoveryHalt = "halt"

	TokenizerWords = "words"
	TokenizerToy   = "toy"
)

type Table struct {
	// Lookahead is either first-symbol or sequence.
	Lookahead string `toml:"lookahead" json:"lookahead"`
}

type Parser struct {
	// Recovery is either skip or halt.
	Recovery string `toml:"recovery" json:"recovery"`
	MaxSteps int    `toml:"max_steps" json:"max_steps"`
}

type Lexer struct {
	// Tokenizer is either words or toy.
	Tokenizer string            `toml:"tokenizer" json:"tokenizer"`
	Remap     map[string]string `toml:"remap" json:"remap"`
}

type Cache struct {
	TTL      string `toml:"ttl" json:"ttl"`
	Capacity uint64 `toml:"capacity" json:"capacity"`
}

var defaultConf = Config{
	Log: Log{
		Level: "Error",
	},
	Transform: Transform{
		EliminateLeftRecursion: true,
		LeftFactoring:          true,
	},
	Table: Table{
		Lookahead: LookaheadFirstSymbol,
	},
	Parser: Parser{
		Recovery: RecoverySkip,
	},
	Lexer: Lexer{
		Tokenizer: TokenizerWords,
		Remap:     map[string]string{},
	},
	Cache: Cache{
		TTL:      "10m",
		Capacity: 64,
	},
}

// NewConfig creates a new config instance with default value.
func NewConfig() *Config {
	conf := defaultConf
	conf.Lexer.Remap = map[string]string{}
	return &conf
}

// Load loads config options from a toml file. Options the file does not mention keep their values.
func (c *Config) Load(fs afero.Fs, confFile string) error {
	src, err := afero.ReadFile(fs, confFile)
	if err != nil {
		return err
	}
	md, err := toml.Decode(string(src), c)
	if err != nil {
		return fmt.Errorf("%v: %w", confFile, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%v: unknown options: %v", confFile, undecoded)
	}
	return c.Valid()
}

// Valid checks the values of enumerated options.
func (c *Config) Valid() error {
	switch c.Log.Level {
	case "Debug", "Info", "Error":
	default:
		return fmt.Errorf("invalid log level: %v", c.Log.Level)
	}
	switch c.Table.Lookahead {
	case LookaheadFirstSymbol, LookaheadSequence:
	default:
		return fmt.Errorf("invalid lookahead: %v", c.Table.Lookahead)
	}
	switch c.Parser.Recovery {
	case RecoverySkip, RecoveryHalt:
	default:
		return fmt.Errorf("invalid recovery: %v", c.Parser.Recovery)
	}
	if c.Parser.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be 0 or more: %v", c.Parser.MaxSteps)
	}
	switch c.Lexer.Tokenizer {
	case TokenizerWords, TokenizerToy:
	default:
		return fmt.Errorf("invalid tokenizer: %v", c.Lexer.Tokenizer)
	}
	if _, err := c.Cache.Duration(); err != nil {
		return err
	}
	return nil
}

func (c *Cache) Duration() (time.Duration, error) {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid cache ttl: %w", err)
	}
	return d, nil
}

// CompileOptions converts the transform and table options.
func (c *Config) CompileOptions() []grammar.CompileOption {
	var opts []grammar.CompileOption
	if c.Transform.EliminateLeftRecursion {
		opts = append(opts, grammar.EliminatingLeftRecursion())
	}
	if c.Transform.LeftFactoring {
		opts = append(opts, grammar.FactoringLeft(c.Transform.GroupByLeadingSymbol))
	}
	if c.Table.Lookahead == LookaheadSequence {
		opts = append(opts, grammar.SelectingBySequence())
	}
	return opts
}

func (c *Config) ParserOptions() []parser.ParserOption {
	opts := []parser.ParserOption{
		parser.MaxSteps(c.Parser.MaxSteps),
	}
	if c.Parser.Recovery == RecoveryHalt {
		opts = append(opts, parser.RecoveryPolicy(parser.RecoveryHalt))
	}
	return opts
}

func (c *Config) LexerOptions() []lexer.LexerOption {
	if len(c.Lexer.Remap) == 0 {
		return nil
	}
	return []lexer.LexerOption{
		lexer.Remap(c.Lexer.Remap),
	}
}
