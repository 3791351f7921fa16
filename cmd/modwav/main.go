// modwav renders an IT module to a WAVE file headlessly, without opening an
// audio device.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dpiron/ittrack"
	"github.com/dpiron/ittrack/wav"
)

const outputHz = 44100

func main() {
	log.SetFlags(0)
	log.SetPrefix("modwav: ")

	wavOut := flag.String("wav", "", "output to a WAVE file")
	flag.Parse()
	if *wavOut == "" {
		log.Fatal("No -wav option provided")
	}
	if flag.NArg() < 1 {
		log.Fatal("Missing IT filename")
	}

	modF, err := os.ReadFile(flag.Args()[0])
	if err != nil {
		log.Fatal(err)
	}

	mod, err := modplayer.LoadITModule(modF)
	if err != nil {
		log.Fatal(err)
	}

	player, err := modplayer.NewPlayer(mod, outputHz)
	if err != nil {
		log.Fatal(err)
	}
	player.Start()

	wavF, err := os.Create(*wavOut)
	if err != nil {
		log.Fatal(err)
	}
	defer wavF.Close()

	wavW, err := wav.NewWriter(wavF, outputHz)
	if err != nil {
		log.Fatal(err)
	}
	defer wavW.Finish()

	// Listen for SIGINT to allow a clean exit
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT)

	interrupted := false
	go func() {
		<-sigc
		interrupted = true
	}()

	audioOut := make([]modplayer.StereoFrame, 2048)
	var lastOrder = -1

	for !interrupted {
		select {
		case <-player.SongEndCh:
			interrupted = true
			continue
		default:
		}

		if pos := player.Position(); pos.Order != lastOrder {
			fmt.Printf("%d/%d\n", pos.Order+1, len(mod.Orders))
			lastOrder = pos.Order
		}

		player.GenerateAudio(audioOut)
		if err := wavW.WriteFrame(audioOut); err != nil {
			log.Fatal(err)
		}
	}
	player.Stop()
}
