// modplay is an interactive terminal player for IT modules: it renders
// audio through PortAudio and shows a live-scrolling pattern view with
// per-channel mute/solo controls.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/dpiron/ittrack"
	"github.com/dpiron/ittrack/cmd/internal/config"
)

var (
	flagHz       = flag.Int("hz", 44100, "output hz")
	flagStartOrd = flag.Int("start", 0, "starting order in the song, clamped to song max")
	flagReverb   = flag.String("reverb", "light", "reverb style: none, light, medium, silly")
	flagNoUI     = flag.Bool("noui", false, "disable the pattern display")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("modplay: ")
	flag.Parse()

	if len(flag.Args()) == 0 {
		log.Fatal("Missing IT filename")
	}

	modF, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	mod, err := modplayer.LoadITModule(modF)
	if err != nil {
		log.Fatal(err)
	}

	player, err := modplayer.NewPlayer(mod, uint(*flagHz))
	if err != nil {
		log.Fatal(err)
	}
	player.SeekTo(*flagStartOrd, 0)
	player.Start()

	reverb, err := config.ReverbFromFlag(*flagReverb, *flagHz)
	if err != nil {
		log.Fatal(err)
	}

	play(player, reverb)
}
