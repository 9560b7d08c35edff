// Copyright 2024 The dastrie Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command dastrie-search queries a database file built by dastrie-build,
// reading one key per line from standard input.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/go-dastrie/dastrie"
)

type mode int

const (
	modeSearch mode = iota
	modeCheck
	modePrefix
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: dastrie-search [OPTIONS] -db=DB")
	fmt.Fprintln(os.Stderr, "Queries a trie database with keys read from standard input.")
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
}

func main() {
	var (
		valueType = flag.String("type", "empty", "record value type: empty, int, double, string")
		compact   = flag.Bool("compact", false, "the database uses the 4-byte element codec")
		dbPath    = flag.String("db", "", "database file to query")
		checkOnly = flag.Bool("in", false, "report membership (0/1) instead of the value")
		prefix    = flag.Bool("prefix", false, "enumerate every stored key that is a prefix of the input")
	)
	flag.Usage = usage
	flag.Parse()

	if *dbPath == "" {
		usage()
		os.Exit(1)
	}

	m := modeSearch
	switch {
	case *checkOnly:
		m = modeCheck
	case *prefix:
		m = modePrefix
	}

	if err := run(*dbPath, *valueType, *compact, m); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

func run(dbPath, valueType string, compact bool, m mode) error {
	var opts []dastrie.TrieOption
	_ = compact // the element codec is self-describing from the database's chunk tag

	switch valueType {
	case "empty":
		return search(dbPath, opts, dastrie.EmptyCodec{}, m, func(v struct{}) string { return "" })
	case "int":
		return search(dbPath, opts, dastrie.Int64Codec{}, m, func(v int64) string { return fmt.Sprintf("%d", v) })
	case "double":
		return search(dbPath, opts, dastrie.Float64Codec{}, m, func(v float64) string { return fmt.Sprintf("%g", v) })
	case "string":
		return search(dbPath, opts, dastrie.StringCodec{}, m, func(v string) string { return v })
	default:
		return fmt.Errorf("unknown record type %q", valueType)
	}
}

func search[T any](dbPath string, opts []dastrie.TrieOption, codec dastrie.ValueCodec[T], m mode, format func(T) string) error {
	trie, err := dastrie.Open(dbPath, codec, opts...)
	if err != nil {
		return fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer trie.Close()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	for scanner.Scan() {
		line := scanner.Text()
		switch m {
		case modeCheck:
			ok, err := trie.Contains([]byte(line))
			if err != nil {
				return fmt.Errorf("query %q: %w", line, err)
			}
			if ok {
				fmt.Fprintf(w, "%s\t1\n", line)
			} else {
				fmt.Fprintf(w, "%s\t0\n", line)
			}
		case modePrefix:
			cur := trie.Prefix([]byte(line))
			for cur.Next() {
				fmt.Fprintf(w, "%s\t%s\n", cur.Key(), format(cur.Value()))
			}
			if err := cur.Err(); err != nil {
				return fmt.Errorf("enumerate prefix %q: %w", line, err)
			}
		default:
			value, ok, err := trie.Find([]byte(line))
			if err != nil {
				return fmt.Errorf("query %q: %w", line, err)
			}
			if ok {
				fmt.Fprintf(w, "%s\t%s\n", line, format(value))
			}
		}
	}
	return scanner.Err()
}
