// main.go - Desktop host for the granular card engine

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █      ▄████  ██▀███    ▄▄▄        ██▓ ███▄    █   ██████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █     ██▒ ▀█▒▓██ ▒ ██▒ ▒████▄     ▓██▒ ██ ▀█   █ ▒██    ▒
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒██░▄▄▄░▓██ ░▄█ ▒ ▒██  ▀█▄   ▒██▒▓██  ▀█ ██▒░ ▓██▄
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ░▓█  ██▓▒██▀▀█▄   ░██▄▄▄▄██  ░██░▓██▒  ▐▌██▒  ▒   ██▒
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒▓███▀▒░██▓ ▒██▒  ▓█   ▓██▒ ░██░▒██░   ▓██░▒██████▒▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒     ░▒   ▒ ░ ▒▓ ░▒▓░  ▒▒   ▓▒█░ ░▓  ░ ▒░   ▒ ▒ ▒ ▒▓▒ ▒ ░
▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░     ░   ░    ░▒ ░ ▒░   ▒   ▒▒ ░ ▒ ░░ ░░   ░ ▒░ ░ ░▒  ░ ░
▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░      ░   ░    ░░   ░    ░   ▒    ▒ ░   ░   ░ ░ ░░  ░  ░
░           ░             ░      ░            ░      ░ ░           ░          ░     ░            ░  ░ ░           ░        ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionGrains
License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147m ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █      ▄████  ██▀███    ▄▄▄        ██▓ ███▄    █   ██████\033[0m\n\033[38;2;255;50;147m▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █     ██▒ ▀█▒▓██ ▒ ██▒ ▒████▄     ▓██▒ ██ ▀█   █ ▒██    ▒\033[0m\n\033[38;2;255;80;147m▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒██░▄▄▄░▓██ ░▄█ ▒ ▒██  ▀█▄   ▒██▒▓██  ▀█ ██▒░ ▓██▄\033[0m\n\033[38;2;255;110;147m░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ░▓█  ██▓▒██▀▀█▄   ░██▄▄▄▄██  ░██░▓██▒  ▐▌██▒  ▒   ██▒\033[0m\n\033[38;2;255;140;147m░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒▓███▀▒░██▓ ▒██▒  ▓█   ▓██▒ ░██░▒██░   ▓██░▒██████▒▒\033[0m\n\033[38;2;255;170;147m░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒     ░▒   ▒ ░ ▒▓ ░▒▓░  ▒▒   ▓▒█░ ░▓  ░ ▒░   ▒ ▒ ▒ ▒▓▒ ▒ ░\033[0m\n\033[38;2;255;200;147m▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░     ░   ░    ░▒ ░ ▒░   ▒   ▒▒ ░ ▒ ░░ ░░   ░ ▒░ ░ ░▒  ░ ░\033[0m\n\033[38;2;255;230;147m▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░      ░   ░    ░░   ░    ░   ▒    ▒ ░   ░   ░ ░ ░░  ░  ░\033[0m\n\033[38;2;255;255;147m░           ░             ░      ░            ░      ░ ░           ░          ░     ░            ░  ░ ░           ░        ░\033[0m")
	fmt.Println("\nA live-looping granular capture-and-playback engine for Eurorack-style computer cards.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/IntuitionGrains")
	fmt.Println("Buy me a coffee: https://ko-fi.com/intuition/tip")
	fmt.Println("License: GPLv3 or later")
}

func main() {
	boilerPlate()

	var (
		modePlay   bool
		modeRender bool
		lofi       bool
		grains     int
		seed       uint
		scriptPath string
		seconds    float64
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVar(&modePlay, "play", false, "Play live: stream a WAV (or silence) through the engine, keys as front panel")
	flagSet.BoolVar(&modeRender, "render", false, "Render headless: granulate input.wav into output.wav")
	flagSet.BoolVar(&lofi, "lofi", false, "Use 8-bit capture storage (5.2s buffer) instead of 12-bit (2.6s)")
	flagSet.IntVar(&grains, "grains", MAX_GRAINS, "Ceiling on simultaneous grains (1-14)")
	flagSet.UintVar(&seed, "seed", 1, "Random seed; equal seeds render identical audio")
	flagSet.StringVar(&scriptPath, "script", "", "Lua control automation for -render (automate(t) -> table)")
	flagSet.Float64Var(&seconds, "seconds", 0, "Render duration; defaults to the input file length")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./intuition_grains -play [input.wav]")
		fmt.Println("       ./intuition_grains -render input.wav output.wav [-script auto.lua] [-seconds N]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if modePlay == modeRender {
		fmt.Println("Error: select exactly one mode flag: -play or -render")
		flagSet.Usage()
		os.Exit(1)
	}

	format := FORMAT_HIFI
	if lofi {
		format = FORMAT_LOFI
	}

	engine := NewGrainEngine(format, uint32(seed))
	engine.SetMaxActiveGrains(int32(grains))

	if modeRender {
		runRender(engine, flagSet.Arg(0), flagSet.Arg(1), scriptPath, seconds)
		return
	}
	runLive(engine, flagSet.Arg(0))
}

func runRender(engine *GrainEngine, inPath, outPath, scriptPath string, seconds float64) {
	if inPath == "" || outPath == "" {
		fmt.Println("Error: -render requires an input and an output file")
		os.Exit(1)
	}

	src, err := loadWAV(inPath, false)
	if err != nil {
		fmt.Printf("Error loading input: %v\n", err)
		os.Exit(1)
	}

	var script *ControlScript
	if scriptPath != "" {
		script, err = LoadControlScript(scriptPath)
		if err != nil {
			fmt.Printf("Error loading script: %v\n", err)
			os.Exit(1)
		}
		defer script.Close()
	}

	frames, err := renderOffline(engine, src, script, seconds)
	if err != nil {
		fmt.Printf("Render failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveWAV(outPath, frames, SAMPLE_RATE); err != nil {
		fmt.Printf("Error writing output: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rendered %d frames (%.2fs) to %s\n",
		len(frames), float64(len(frames))/float64(SAMPLE_RATE), outPath)
}

func runLive(engine *GrainEngine, inPath string) {
	var src *wavStream
	if inPath != "" {
		var err error
		src, err = loadWAV(inPath, true)
		if err != nil {
			fmt.Printf("Error loading input: %v\n", err)
			os.Exit(1)
		}
	}

	runner := NewCardRunner(engine, src)

	oto, err := NewOtoPlayer(SAMPLE_RATE)
	if err != nil {
		fmt.Printf("Failed to initialize audio: %v\n", err)
		os.Exit(1)
	}
	oto.SetupPlayer(runner)
	var player AudioOutput = oto

	panel := NewTerminalPanel(runner)
	panel.Start()
	defer panel.Stop()

	player.Start()
	defer player.Close()

	fmt.Println("\nKeys: q/a Main  w/s X  e/d Y  1/2/3 freeze/normal/loop  space trigger  0 unpatch  ESC quit")

	<-panel.Quit()
	player.Stop()
	fmt.Println("\nBye.")
}
