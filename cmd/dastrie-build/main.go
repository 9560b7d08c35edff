// Copyright 2024 The dastrie Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command dastrie-build builds a double-array trie from a sorted input
// file and, optionally, writes it to a database file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-dastrie/dastrie"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: dastrie-build [OPTIONS] INPUT")
	fmt.Fprintln(os.Stderr, "Builds a double-array trie from INPUT.")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "  INPUT   a file in which each line holds a key and an optional value")
	fmt.Fprintln(os.Stderr, "          separated by a TAB character; lines must be sorted by the")
	fmt.Fprintln(os.Stderr, "          dictionary order of their keys.")
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
}

func main() {
	var (
		valueType = flag.String("type", "empty", "record value type: empty, int, double, string")
		compact   = flag.Bool("compact", false, "use the 4-byte element codec instead of 5-byte")
		dbPath    = flag.String("db", "", "database file to write the built trie to")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), *valueType, *compact, *dbPath); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

func run(inputPath, valueType string, compact bool, dbPath string) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer f.Close()

	var width []dastrie.BuilderOption
	if compact {
		width = append(width, dastrie.WithElementWidth4())
	} else {
		width = append(width, dastrie.WithElementWidth5())
	}

	switch valueType {
	case "empty":
		return build(f, dbPath, width, dastrie.EmptyCodec{}, func(s string) (struct{}, error) { return struct{}{}, nil })
	case "int":
		return build(f, dbPath, width, dastrie.Int64Codec{}, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
	case "double":
		return build(f, dbPath, width, dastrie.Float64Codec{}, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
	case "string":
		return build(f, dbPath, width, dastrie.StringCodec{}, func(s string) (string, error) { return s, nil })
	default:
		return fmt.Errorf("unknown record type %q", valueType)
	}
}

func build[T any](f *os.File, dbPath string, opts []dastrie.BuilderOption, codec dastrie.ValueCodec[T], parse func(string) (T, error)) error {
	builder := dastrie.NewBuilder(codec, opts...)

	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		key, rawValue, _ := strings.Cut(line, "\t")
		value, err := parse(rawValue)
		if err != nil {
			return fmt.Errorf("line %d: parse value %q: %w", n+1, rawValue, err)
		}
		if err := builder.Add([]byte(key), value); err != nil {
			return fmt.Errorf("line %d: %w", n+1, err)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	fmt.Printf("Number of records: %d\n\n", n)
	fmt.Println("Building a double array trie...")

	stats, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	fmt.Println()
	fmt.Println("[Double array]")
	fmt.Printf("Number of nodes: %d\n", stats.NodeCount)
	fmt.Printf("Number of leaves: %d\n", stats.LeafCount)
	fmt.Printf("Number of elements: %d\n", stats.ElementCount)
	fmt.Printf("Number of elements used: %d\n", stats.UsedCount)
	fmt.Printf("Storage utilization: %.4f\n", stats.UsageRatio)
	fmt.Printf("Average number of trials for finding bases: %.4f\n", stats.AverageBaseTrials)
	fmt.Println("[Tail array]")
	fmt.Printf("Size in bytes: %d\n", stats.TailSize)
	fmt.Println()

	if dbPath == "" {
		return nil
	}
	out, err := os.Create(dbPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", dbPath, err)
	}
	defer out.Close()
	if _, err := builder.WriteTo(out); err != nil {
		return fmt.Errorf("write %s: %w", dbPath, err)
	}
	return out.Close()
}
