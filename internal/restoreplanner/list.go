package restoreplanner

import (
	"fmt"
	"io"
	"sort"
)

const listTimeLayout = "2006/01/02-15:04:05"

// WriteList writes Section 4.8's list-mode report: one tab-separated line
// per live entry, ordered by logical path, of the form
// "logical_path  generation_id  C|N  mtime[  source_path]" — the trailing
// source path appears only for entries whose bytes are stored under a
// different (pre-rename) path.
func WriteList(w io.Writer, generations []Generation) error {
	type row struct {
		item         Item
		generationID string
	}

	var rows []row
	for _, gen := range generations {
		for _, bucket := range [][]Item{
			gen.CompressedDirect, gen.CompressedRedirected,
			gen.UncompressedDirect, gen.UncompressedRedirected,
		} {
			for _, item := range bucket {
				rows = append(rows, row{item: item, generationID: gen.ID})
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].item.LogicalPath < rows[j].item.LogicalPath })

	for _, r := range rows {
		flag := "N"
		if r.item.Compress {
			flag = "C"
		}
		line := fmt.Sprintf("%s\t%s\t%s\t%s", r.item.LogicalPath, r.generationID, flag, r.item.MTime.Format(listTimeLayout))
		if r.item.Redirected() {
			line += "\t" + r.item.StoredPath
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
