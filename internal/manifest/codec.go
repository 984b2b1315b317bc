package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mutagen-io/incbackup/internal/filesystem"
	"github.com/mutagen-io/incbackup/internal/hashutil"
	"github.com/mutagen-io/incbackup/internal/pathutil"
)

// headerComment is written as the manifest's first line; it is always
// skipped on read.
const headerComment = "### previous path(blank if new),new path(blank if delete),last modified,C=compress/N=non compress,sha value"

// Write renders records to fname in ADD, UPDATE, DELETE, MOVE order (the
// order consumers must not rely on, per Section 3, but which is still
// produced for readability) and writes the file atomically.
func Write(fname string, adds, updates, deletes, moves []Record) error {
	var b strings.Builder
	b.WriteString(headerComment)
	b.WriteByte('\n')
	for _, r := range adds {
		writeLine(&b, r)
	}
	for _, r := range updates {
		writeLine(&b, r)
	}
	for _, r := range deletes {
		writeLine(&b, r)
	}
	for _, r := range moves {
		writeLine(&b, r)
	}
	return filesystem.WriteFileAtomic(fname, []byte(b.String()), 0o644)
}

func writeLine(b *strings.Builder, r Record) {
	prev := quoteOrEmpty(r.PrevPath)
	next := quoteOrEmpty(r.NewPath)

	var mtimeField, shaField string
	if r.Deleted {
		mtimeField = deletedMTime
		shaField = "00"
	} else {
		mtimeField = r.MTime.Format(timeLayout)
		shaField = r.SHA.String()
	}

	fmt.Fprintf(b, "%s,%s,%s,%s,%s\n", prev, next, mtimeField, flagChar(r.Compress), shaField)
}

func quoteOrEmpty(path string) string {
	if path == "" {
		return ""
	}
	return `"` + path + `"`
}

// Read parses a manifest file, skipping the header comment and any
// malformed records (fewer than five tokens, per Section 4.4/7: corrupt
// manifest lines are dropped leniently).
func Read(fname string) ([]Record, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	// Manifest lines can legitimately be long if a path contains many
	// commas; grow the buffer generously.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			continue
		}
		if line == "" {
			continue
		}
		record, ok := parseLine(line)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to read manifest")
	}

	return records, nil
}

// parseLine decodes one manifest line into a Record. It reconstitutes the
// first two (quoted, possibly comma-containing) fields by rejoining
// comma-split tokens until a closing quote is observed, mirroring the
// original tool's split_including_commma. A line yielding fewer than five
// tokens overall is rejected.
func parseLine(line string) (Record, bool) {
	tokens := strings.Split(line, ",")

	fields := make([]string, 0, 5)
	for i := 0; i < 2; i++ {
		if len(tokens) == 0 {
			return Record{}, false
		}
		field := tokens[0]
		tokens = tokens[1:]
		for field != "" && field[len(field)-1] != '"' {
			if len(tokens) == 0 {
				return Record{}, false
			}
			field += "," + tokens[0]
			tokens = tokens[1:]
		}
		fields = append(fields, field)
	}
	fields = append(fields, tokens...)

	if len(fields) < 5 {
		return Record{}, false
	}

	prev := pathutil.Normalize(fields[0])
	next := pathutil.Normalize(fields[1])
	mtimeField := fields[2]
	flagField := fields[3]
	shaField := fields[4]

	record := Record{
		PrevPath: prev,
		NewPath:  next,
		Compress: flagField == "C" || flagField == "c",
	}

	if mtimeField == deletedMTime {
		record.Deleted = true
		return record, true
	}

	mtime, err := time.ParseInLocation(timeLayout, mtimeField, time.Local)
	if err != nil {
		return Record{}, false
	}
	record.MTime = mtime

	sha, err := hashutil.ParseDigest(shaField)
	if err != nil {
		return Record{}, false
	}
	record.SHA = sha

	return record, true
}
