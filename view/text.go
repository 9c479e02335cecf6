package view

import (
	"fmt"
	"io"
)

// WriteText renders the snapshot for a terminal, one task per line:
//
//	[x]   3  Buy milk  (Jan 2, 2006)
//
// A pending toggle is shown as [~].
func WriteText(w io.Writer, s Snapshot) error {
	items := Items(s)
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, EmptyMessage(s.Filter))
		return err
	}
	for _, item := range items {
		box := "[ ]"
		switch {
		case item.Pending:
			box = "[~]"
		case item.Checked:
			box = "[x]"
		}
		if _, err := fmt.Fprintf(w, "%s %4d  %s  (%s)\n", box, item.ID, item.Title, item.Created); err != nil {
			return err
		}
	}
	return nil
}
