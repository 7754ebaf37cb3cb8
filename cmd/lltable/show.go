package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nihei9/lltable/grammar"
	gspec "github.com/nihei9/lltable/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show <report or table file path>",
		Short: "Print a parse report or a parsing table in a readable format",
		Example: `  lltable show report.json
  lltable show expr-table.json`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
	rootCmd.AddCommand(cmd)
}

// showReport is a report whose tree is kept as it is, because the order of the keys of a tree is meaningful.
type showReport struct {
	Accepted bool                 `json:"accepted"`
	Errors   []*gspec.ParseError  `json:"errors"`
	Trace    []*gspec.TraceRecord `json:"trace"`
	Tree     json.RawMessage      `json:"tree"`
}

func runShow(cmd *cobra.Command, args []string) error {
	src, err := afero.ReadFile(appFs, args[0])
	if err != nil {
		return fmt.Errorf("Cannot open the file %s: %w", args[0], err)
	}

	var keys map[string]json.RawMessage
	err = json.Unmarshal(src, &keys)
	if err != nil {
		return fmt.Errorf("Cannot read the file %s: %w", args[0], err)
	}
	if _, ok := keys["trace"]; ok {
		r := &showReport{}
		err := json.Unmarshal(src, r)
		if err != nil {
			return err
		}
		return showParseReport(r)
	}

	err = gspec.Validate(cmd.Context(), gspec.SchemaKindTable, src)
	if err != nil {
		return err
	}
	var tab gspec.Table
	err = json.Unmarshal(src, &tab)
	if err != nil {
		return err
	}
	pterm.DefaultTable.WithHasHeader().WithData(tableData(tab)).Render()
	return nil
}

func showParseReport(r *showReport) error {
	data := pterm.TableData{
		{"stack", "input", "action"},
	}
	for _, rec := range r.Trace {
		data = append(data, []string{strings.Join(rec.FullStack, " "), rec.Input, rec.Action})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	if !r.Accepted {
		pterm.Error.Println(fmt.Sprintf("rejected with %v errors", len(r.Errors)))
		for _, e := range r.Errors {
			pterm.Error.Println(fmt.Sprintf("%v at %v (%v:%v); stack top: %v; expected: %v", e.Kind, e.Input, e.Row, e.Col, e.StackTop, e.Expected))
		}
		return nil
	}
	pterm.Info.Println("accepted")
	if len(r.Tree) == 0 || string(r.Tree) == "null" {
		return nil
	}
	ll, err := leveledTree(r.Tree)
	if err != nil {
		return err
	}
	pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(ll)).Render()
	return nil
}

// tableData lays out a parsing table with the non-terminals as rows. The end-marker is the last column.
func tableData(tab gspec.Table) pterm.TableData {
	var nts []string
	termSet := map[string]struct{}{}
	for nt, row := range tab {
		nts = append(nts, nt)
		for term := range row {
			termSet[term] = struct{}{}
		}
	}
	sort.Strings(nts)
	var terms []string
	for term := range termSet {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i] == grammar.EndMarker.String() || terms[j] == grammar.EndMarker.String() {
			return terms[j] == grammar.EndMarker.String() && terms[i] != grammar.EndMarker.String()
		}
		return terms[i] < terms[j]
	})

	data := pterm.TableData{
		append([]string{""}, terms...),
	}
	for _, nt := range nts {
		row := []string{nt}
		for _, term := range terms {
			v, ok := tab[nt][term]
			if !ok {
				v = "error"
			}
			row = append(row, v)
		}
		data = append(data, row)
	}
	return data
}

// leveledTree reads a tree in the nested form `{"S": {"a": null, "S_1": {...}}}` keeping the order of the keys.
func leveledTree(src []byte) (pterm.LeveledList, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	return readLeveledObject(dec, pterm.LeveledList{}, 0)
}

func readLeveledObject(dec *json.Decoder, ll pterm.LeveledList, level int) (pterm.LeveledList, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("a tree node must be an object or null: %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("invalid key: %v", tok)
		}
		ll = append(ll, pterm.LeveledListItem{
			Level: level,
			Text:  key,
		})
		var raw json.RawMessage
		err = dec.Decode(&raw)
		if err != nil {
			return nil, err
		}
		if string(raw) == "null" {
			continue
		}
		ll, err = readLeveledObject(json.NewDecoder(bytes.NewReader(raw)), ll, level+1)
		if err != nil {
			return nil, err
		}
	}
	_, err = dec.Token()
	if err != nil {
		return nil, err
	}
	return ll, nil
}
