package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// splitMbox implements spec §6's mbox splitting: input is recognized as
// an mbox if any line after a blank line begins "From " (case-sensitive,
// space-terminated). A From line is only accepted at start-of-file or
// immediately after a blank line, so a quoted "From " inside a message
// body (one not preceded by a blank line) never triggers a false split.
//
// Each recognized message is staged to workDir/tmp.email<NNN>.mailpack,
// handed to process, and the staging file is removed afterward - the
// non-seekable-stream case spec §6 calls out, since os.Stdin can't be
// rewound to hand the walker a sub-range directly.
func splitMbox(r io.Reader, workDir string, process func(path string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		n           int
		cur         *os.File
		atBlankLine = true
	)

	closeCur := func() error {
		if cur == nil {
			return nil
		}
		path := cur.Name()
		if err := cur.Close(); err != nil {
			return err
		}
		cur = nil
		err := process(path)
		if rmErr := os.Remove(path); err == nil {
			err = rmErr
		}
		return err
	}

	startNext := func() error {
		n++
		path := filepath.Join(workDir, fmt.Sprintf("tmp.email%03d.mailpack", n))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		cur = f
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		isFromLine := atBlankLine && hasFromPrefix(line)

		if isFromLine || cur == nil {
			if err := closeCur(); err != nil {
				return err
			}
			if err := startNext(); err != nil {
				return err
			}
			if isFromLine {
				atBlankLine = line == ""
				continue // the "From " marker line itself isn't part of the message body
			}
		}

		if _, err := io.WriteString(cur, line+"\n"); err != nil {
			return err
		}
		atBlankLine = line == ""
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return closeCur()
}

func hasFromPrefix(line string) bool {
	return len(line) >= 5 && line[:5] == "From "
}
