package main

import (
	"github.com/bwesterb/go-huffblock"

	"rsc.io/getopt"

	"golang.org/x/term"

	"bufio"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// Flags

	decompress  = flag.Bool("decompress", false, "specify to decompress")
	info        = flag.Bool("info", false, "specify to print info on compressed file")
	keep        = flag.Bool("keep", false, "keep (don't delete) input file")
	toStdout    = flag.Bool("stdout", false, "write to stdout; implies -k")
	force       = flag.Bool("force", false, "overwrite output")
	fourStreams = flag.Bool("4", false, "split each block's payload into four parallel-decodable streams")

	// State
	inPath  string
	inFile  *os.File
	outPath string
	outFile *os.File
)

const extension = ".hfb"

// magic identifies the block-framed container; version 1 is the only
// format this binary ever writes.
var magic = [4]byte{'H', 'F', 'B', 1}

const (
	frameRaw   = 0
	frameRLE   = 1
	frameHuff1 = 2
	frameHuff4 = 3
)

// encodeFile reads r in chunks of up to huffblock.BlockSizeMax, entropy
// codes each one independently and writes the framed container to w.
func encodeFile(w io.Writer, r io.Reader) (blocks, rawIn, packedOut int64, err error) {
	if _, err = w.Write(magic[:]); err != nil {
		return
	}

	ws := huffblock.NewWorkspace()
	buf := make([]byte, huffblock.BlockSizeMax)
	dst := make([]byte, huffblock.BlockSizeMax+huffblock.WorkspaceMinSize)

	var lenHdr [4]byte
	streamMode := byte(frameHuff1)
	encode := huffblock.EncodeBlock1X
	if *fourStreams {
		streamMode = frameHuff4
		encode = huffblock.EncodeBlock4X
	}

	for {
		n, readErr := io.ReadFull(r, buf)
		if n == 0 {
			if readErr == io.EOF {
				break
			}
			err = readErr
			return
		}

		chunk := buf[:n]
		rawIn += int64(n)
		blocks++

		var mode byte
		var payload []byte

		written, encErr := encode(dst, chunk, huffblock.SymbolMax, 0, ws)
		switch {
		case encErr != nil:
			err = encErr
			return
		case written == 0:
			mode = frameRaw
			payload = chunk
		case written == 1:
			mode = frameRLE
			payload = dst[:1]
		default:
			mode = streamMode
			payload = dst[:written]
		}

		binary.LittleEndian.PutUint32(lenHdr[:], uint32(n))
		if _, err = w.Write(lenHdr[:]); err != nil {
			return
		}
		if _, err = w.Write([]byte{mode}); err != nil {
			return
		}
		if mode == frameHuff1 || mode == frameHuff4 {
			binary.LittleEndian.PutUint32(lenHdr[:], uint32(len(payload)))
			if _, err = w.Write(lenHdr[:]); err != nil {
				return
			}
		}
		if _, err = w.Write(payload); err != nil {
			return
		}
		packedOut += int64(4 + 1 + len(payload))
		if mode == frameHuff1 || mode == frameHuff4 {
			packedOut += 4
		}

		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			err = readErr
			return
		}
	}

	return
}

// decodeFile is encodeFile's inverse.
func decodeFile(w io.Writer, r io.Reader) (blocks int64, err error) {
	var gotMagic [4]byte
	if _, err = io.ReadFull(r, gotMagic[:]); err != nil {
		if err == io.EOF {
			err = errors.New("empty file")
		}
		return
	}
	if gotMagic != magic {
		err = errors.New("not a huffblock container (bad magic)")
		return
	}

	var lenHdr [4]byte
	var modeBuf [1]byte

	for {
		_, readErr := io.ReadFull(r, lenHdr[:])
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			err = readErr
			return
		}
		origLen := int(binary.LittleEndian.Uint32(lenHdr[:]))

		if _, err = io.ReadFull(r, modeBuf[:]); err != nil {
			return
		}
		mode := modeBuf[0]

		dst := make([]byte, origLen)

		switch mode {
		case frameRaw:
			if _, err = io.ReadFull(r, dst); err != nil {
				return
			}
		case frameRLE:
			var sym [1]byte
			if _, err = io.ReadFull(r, sym[:]); err != nil {
				return
			}
			for i := range dst {
				dst[i] = sym[0]
			}
		case frameHuff1, frameHuff4:
			if _, err = io.ReadFull(r, lenHdr[:]); err != nil {
				return
			}
			compLen := int(binary.LittleEndian.Uint32(lenHdr[:]))
			src := make([]byte, compLen)
			if _, err = io.ReadFull(r, src); err != nil {
				return
			}
			maxSym := huffblock.SymbolMax
			var table huffblock.CodeTable
			if mode == frameHuff1 {
				err = huffblock.DecodeBlock1X(dst, src, &maxSym, &table)
			} else {
				err = huffblock.DecodeBlock4X(dst, src, &maxSym, &table)
			}
			if err != nil {
				return
			}
		default:
			err = fmt.Errorf("corrupt container: unknown frame mode %d", mode)
			return
		}

		if _, err = w.Write(dst); err != nil {
			return
		}
		blocks++
	}

	return
}

func doCompress() int {
	w := bufio.NewWriter(outFile)
	r := bufio.NewReader(inFile)

	blocks, rawIn, packedOut, err := encodeFile(w, r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
		return 7
	}
	if err = w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: write: %v\n", outPath, err)
		return 7
	}

	if *info {
		fmt.Fprintf(os.Stderr, "Blocks                %d\n", blocks)
		fmt.Fprintf(os.Stderr, "Raw bytes             %d\n", rawIn)
		fmt.Fprintf(os.Stderr, "Packed bytes          %d\n", packedOut)
		if rawIn > 0 {
			fmt.Fprintf(os.Stderr, "Ratio                 %.2f%%\n", 100*float64(packedOut)/float64(rawIn))
		}
	}

	return 0
}

func doDecompress() int {
	var w *bufio.Writer
	if outFile == nil {
		w = bufio.NewWriter(io.Discard)
	} else {
		w = bufio.NewWriter(outFile)
	}
	r := bufio.NewReader(inFile)

	blocks, err := decodeFile(w, r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
		return 9
	}
	if err = w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, err)
		return 10
	}

	if *info {
		fmt.Fprintf(os.Stderr, "Blocks                %d\n", blocks)
	}

	return 0
}

func do() int {
	var (
		err  error
		code int
	)

	if len(flag.Args()) > 1 {
		fmt.Fprintf(os.Stderr, "too many arguments\n")
		return 2
	}

	if len(flag.Args()) == 0 {
		inPath = "-"
	} else {
		inPath = flag.Args()[0]
	}

	closeInput := false
	closeOutput := false

	defer func() {
		if closeInput {
			inFile.Close()
		}

		if closeOutput {
			outFile.Close()

			if code != 0 {
				os.Remove(outPath)
			}
		}
	}()

	if inPath == "-" {
		inFile = os.Stdin
		closeInput = false
	} else {
		if _, err := os.Stat(inPath); errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
			return 1
		}

		inFile, err = os.Open(inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
			return 3
		}
		closeInput = true
	}

	if inPath == "-" {
		outPath = "-"
	} else {
		if *toStdout {
			outPath = "-"
		} else if *decompress {
			if strings.HasSuffix(inPath, extension) {
				outPath = inPath[:len(inPath)-len(extension)]
			} else {
				outPath = inPath + ".out"
				fmt.Fprintf(
					os.Stderr,
					"%s: Unknown extension, writing to %s\n",
					inPath,
					outPath,
				)
			}
		} else if !*info {
			outPath = inPath + extension
		}
	}

	if *info && !*decompress {
		outFile = nil
	} else if outPath == "-" {
		outFile = os.Stdout

		if term.IsTerminal(int(os.Stdout.Fd())) && !*decompress && !*info {
			fmt.Fprintf(os.Stderr, "huffblock: I'm not writing compressed data to stdout\n")
			return 13
		}
	} else if !*info {
		if _, err := os.Stat(outPath); !*force && err == nil {
			fmt.Fprintf(os.Stderr, "%s: already exists\n", outPath)
			return 11
		}

		outFile, err = os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: create: %v\n", outPath, err)
			return 4
		}

		closeOutput = true
	}

	if *decompress || *info {
		code = doDecompress()
	} else {
		code = doCompress()
	}

	if closeInput {
		closeInput = false
		inFile.Close()

		if !*keep && !*toStdout && code == 0 && !*info {
			err = os.Remove(inPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: unlink: %v\n", inPath, err)
				return 2
			}
		}
	}

	return code
}

func main() {
	getopt.Alias("d", "decompress")
	getopt.Alias("k", "keep")
	getopt.Alias("c", "stdout")
	getopt.Alias("f", "force")
	getopt.Alias("i", "info")

	// Work around https://github.com/rsc/getopt/issues/3
	err := getopt.CommandLine.Parse(os.Args[1:])
	if err != nil {
		os.Exit(12)
	}

	ret := do()
	os.Exit(ret)
}
