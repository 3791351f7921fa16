// moddump prints the pattern data of an IT module as text, for debugging
// pattern decode problems without a player attached.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/dpiron/ittrack"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("moddump: ")

	if len(os.Args) <= 1 {
		log.Fatal("Missing song filename")
	}

	songF, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	mod, err := modplayer.LoadITModule(songF)
	if err != nil {
		log.Fatal(err)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	fmt.Fprintf(w, "%s: %d channels, %d orders, %d patterns, %d samples\n",
		mod.SongName, mod.Channels, len(mod.Orders), len(mod.Patterns), len(mod.Samples))

	for pi, pat := range mod.Patterns {
		fmt.Fprintf(w, "\nPattern %d (%d rows)\n", pi, pat.Rows)
		for row := 0; row < pat.Rows; row++ {
			fmt.Fprintf(w, "%3d |", row)
			for ch := 0; ch < mod.Channels; ch++ {
				e := pat.Entry(row, ch)
				inst := "__"
				if !e.Instrument.IsEmpty() {
					inst = fmt.Sprintf("%02d", e.Instrument)
				}
				fmt.Fprintf(w, " %s %s|", e.Note.String(), inst)
			}
			fmt.Fprintln(w)
		}
	}
}
