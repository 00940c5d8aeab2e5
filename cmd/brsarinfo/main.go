// Command brsarinfo prints the container framing of a BRSAR file: magic,
// endianness, version, sizes, each block's magic and declared size, and the
// entry count of each INFO table. It prints no separate observed size per
// block: brsar.Open already fails when a block's declared size differs from
// its BlockPtr length, and that error is reported instead.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/kitlith/brsar"
	"github.com/kitlith/brsar/block"
	"github.com/kitlith/brsar/internal/binstream"
)

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	for _, path := range flag.Args() {
		if err := info(path); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: brsarinfo FILE...")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

func info(path string) error {
	a, err := brsar.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer a.Close()

	h := a.Header
	fmt.Printf("%s\n", path)
	fmt.Printf("  magic:       %s\n", string(h.Magic[:]))
	fmt.Printf("  endian:      %s\n", endianName(h.Endian))
	fmt.Printf("  version:     0x%04X\n", h.Version)
	fmt.Printf("  file_size:   0x%X\n", h.FileSize)
	fmt.Printf("  header_size: 0x%X\n", h.HeaderSize)
	fmt.Printf("  block_count: %d\n", h.BlockCount)

	printBlock("SYMB", a.Symbol.Header)
	printBlock("INFO", a.Info.Header)
	printBlock("FILE", a.File.Header)

	fmt.Printf("  sounds:  %d\n", a.Info.SoundTable.Len())
	fmt.Printf("  banks:   %d\n", a.Info.BankTable.Len())
	fmt.Printf("  players: %d\n", a.Info.PlayerTable.Len())
	fmt.Printf("  files:   %d\n", a.Info.FileTable.Len())
	fmt.Printf("  groups:  %d\n", a.Info.GroupTable.Len())
	return nil
}

func printBlock(name string, hdr block.BlockHeader) {
	got := string(hdr.Magic[:])
	mismatch := ""
	if got != name {
		mismatch = " (MISMATCH)"
	}
	fmt.Printf("  %s block: magic=%s size=0x%X%s\n", name, got, hdr.Size, mismatch)
}

func endianName(e binstream.Endian) string {
	if e == binstream.LittleEndian {
		return "little"
	}
	return "big"
}
