// SPDX-License-Identifier: EPL-2.0

// Command audslice drives a sampling pipeline over a catalog of audio files
// for a number of training steps, saving resumable checkpoints along the
// way.
//
//	audslice -catalog train.tsv -steps 100000 -save-interval 1000 -db ckpt.sqlite
//	audslice -catalog train.tsv -steps 200000 -db ckpt.sqlite -resume-step -1
//
// Each step draws one batch. With -dump, batches are also written as 16-bit
// WAV files for listening.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "audslice:", err)
		os.Exit(1)
	}
}
