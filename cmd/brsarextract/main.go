// Command brsarextract reads a BRSAR file, resolves every sound, and writes
// {output_dir}/{name}.{ext} with exactly the resolved byte range from the
// source. Sounds with no recorded payload are skipped and reported, not
// fatal.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"

	"github.com/kitlith/brsar"
	"github.com/kitlith/brsar/block"
	"github.com/kitlith/brsar/errs"
)

func main() {
	var outDir string
	var printCRC, force bool
	flag.StringVar(&outDir, "o", "", "output directory (default: input file's base name, with \"_extracted\" appended)")
	flag.BoolVar(&printCRC, "crc", false, "print each extracted payload's CRC-16, for comparing against a prior extraction")
	flag.BoolVar(&force, "f", false, "overwrite existing output files")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)
	if outDir == "" {
		outDir = pathutil.TrimExt(filepath.Base(path)) + "_extracted"
	}
	if err := extract(path, outDir, printCRC, force); err != nil {
		log.Fatalf("%+v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: brsarextract [OPTION]... FILE")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

func extract(path, outDir string, printCRC, force bool) error {
	a, err := brsar.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer a.Close()

	if !osutil.Exists(outDir) {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return errors.WithStack(err)
		}
	}

	n := a.SoundCount()
	for i := 0; i < n; i++ {
		resolved, err := a.ResolveSound(i)
		if err != nil {
			if e, ok := err.(*errs.Error); ok && e.Kind == errs.NoPayload {
				fmt.Printf("sound %d: skipped: %v\n", i, err)
				continue
			}
			return errors.WithStack(err)
		}
		data, err := a.ReadPayload(resolved)
		if err != nil {
			return errors.WithStack(err)
		}
		outPath := filepath.Join(outDir, resolved.Name+"."+resolved.Extension)
		if !force && osutil.Exists(outPath) {
			fmt.Printf("sound %d: skipped: %s already exists (use -f to overwrite)\n", i, outPath)
			continue
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return errors.WithStack(err)
		}
		if printCRC {
			fmt.Printf("sound %d: wrote %s (0x%X bytes, crc16 0x%04X)\n", i, outPath, len(data), block.CRC16(data))
		} else {
			fmt.Printf("sound %d: wrote %s (0x%X bytes)\n", i, outPath, len(data))
		}
	}
	return nil
}
