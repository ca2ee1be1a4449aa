package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	idio "github.com/idio-lang/gidio"
)

type args struct {
	inputPath *string

	locations *bool
	gcStats   *bool
	collect   *bool
}

func readArgs() *args {
	a := &args{
		inputPath: flag.String("input", "", "Path to the input file (default stdin)"),

		// Debugging Options

		locations: flag.Bool("locations", false, "Print the source location of each expression"),
		gcStats:   flag.Bool("gc-stats", false, "Dump GC statistics on exit"),
		collect:   flag.Bool("collect", false, "Run a full collection after each expression"),
	}
	flag.Parse()
	return a
}

func main() {
	a := readArgs()

	var h idio.Handle
	if *a.inputPath != "" {
		fh, err := idio.OpenFileHandle(*a.inputPath)
		if err != nil {
			log.Fatalf("open: %v", err)
		}
		h = fh
	} else {
		sc := bufio.NewScanner(os.Stdin)
		var buf []byte
		for sc.Scan() {
			buf = append(buf, sc.Bytes()...)
			buf = append(buf, '\n')
		}
		h = idio.NewStringHandle("*stdin*", string(buf))
	}

	for {
		expr, err := idio.Read(h)
		if err != nil {
			log.Fatalf("read: %v", err)
		}
		if expr == idio.EOF {
			break
		}
		if expr == idio.Nil {
			continue
		}
		if *a.locations {
			if lo, ok := idio.SrcProperty(expr); ok {
				fmt.Printf("%s\t", idio.ToString(lo))
			}
		}
		fmt.Println(idio.ToString(expr))
		if *a.collect {
			idio.Collect("cli")
		}
	}

	if *a.gcStats {
		if err := idio.DumpStats(); err != nil {
			log.Printf("gc-stats: %v", err)
		}
	}
	idio.Final()
}
