// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
	"github.com/ezrec/ls8/translate"
)

func main() {
	var assemble bool
	var save string
	var config string
	var trace bool
	var verbose bool
	var maxTicks int
	unknown := cpu.UNKNOWN_HALT

	flag.BoolVar(&assemble, "a", false, "Program is LS-8 assembly, not binary text")
	flag.StringVar(&save, "s", "", "Save program as LS-8 binary text, do not execute")
	flag.StringVar(&config, "config", "", ".yaml emulator configuration")
	flag.BoolVar(&trace, "t", false, "Trace each instruction")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.IntVar(&maxTicks, "n", 0, "Maximum instructions to execute, 0 for unlimited")
	flag.TextVar(&unknown, "u", cpu.UNKNOWN_HALT, "Unknown instruction policy: stall, skip, or halt")

	flag.Usage = func() {
		translate.Fprintf(flag.CommandLine.Output(), "usage: %v [flags] <program.ls8>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	name := flag.Arg(0)

	cfg := emulator.DefaultConfig()
	if len(config) != 0 {
		var err error
		cfg, err = emulator.LoadConfigFile(config)
		if err != nil {
			log.Fatalf("%v: %v", config, err)
		}
	}

	// Flags on the command line override the configuration file.
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "t":
			cfg.Trace = trace
		case "v":
			cfg.Verbose = verbose
		case "n":
			cfg.MaxTicks = maxTicks
		case "u":
			cfg.Unknown = unknown
		}
	})

	var prog *cpu.Program
	var err error
	if assemble || strings.HasSuffix(name, ".asm") {
		asm := &cpu.Assembler{Verbose: cfg.Verbose}
		prog, err = asm.ParseFile(name)
	} else {
		ld := &cpu.Loader{Verbose: cfg.Verbose}
		prog, err = ld.LoadFile(name)
	}
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	if len(save) != 0 {
		ouf, err := os.Create(save)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		defer ouf.Close()

		err = prog.Write(ouf)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		return
	}

	emu := emulator.NewEmulator()
	emu.Program = prog
	emu.Apply(cfg)

	err = emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", name, err)
	}

	err = emu.Run()
	if err != nil {
		if cfg.Verbose {
			fmt.Fprint(os.Stderr, emu.Cpu.String())
		}
		log.Fatalf("%v: %v", name, err)
	}
}
