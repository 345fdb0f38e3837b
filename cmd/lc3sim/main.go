// Package main provides the lc3sim command-line interface.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sarchlab/lc3sim/console"
	"github.com/sarchlab/lc3sim/emu"
	"github.com/sarchlab/lc3sim/loader"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "lc3sim image.obj [image.obj ...]",
		Short: "LC-3 virtual machine",
		Long: "lc3sim loads one or more LC-3 object images into memory and executes\n" +
			"them from address 0x3000 until the guest program halts.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Report the instruction count after HALT")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lc3sim: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	images := make([]*loader.Image, 0, len(args))
	for _, path := range args {
		img, err := loader.Load(path)
		if err != nil {
			return err
		}
		images = append(images, img)
	}

	cons, err := console.New()
	if err != nil {
		return err
	}
	defer func() { _ = cons.Restore() }()

	// An external terminate signal must put the terminal back before the
	// process dies.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		_ = cons.Restore()
		os.Exit(1)
	}()
	defer signal.Stop(sigCh)

	emulator := emu.NewEmulator(
		emu.WithStdin(cons),
		emu.WithStdout(os.Stdout),
		emu.WithKeyboard(cons),
	)

	// Later images may overwrite earlier ones.
	memory := emulator.Memory()
	for _, img := range images {
		for i, word := range img.Words {
			memory.Write(img.Origin+uint16(i), word)
		}
	}

	if err := emulator.Run(); err != nil {
		_ = cons.Restore()
		return err
	}

	if err := cons.Restore(); err != nil {
		return err
	}

	if verbose {
		fmt.Printf("Instructions executed: %d\n", emulator.InstructionCount())
	}

	return nil
}
