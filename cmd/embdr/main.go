package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/embdr/embdr-go/pkg/processr"
)

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	if err == nil {
		return
	}
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "embdr: %v\n", err)
		if processr.IsLinkUnreachable(err) {
			fmt.Fprintln(os.Stderr, "embdr: the server could not fetch the link and downloading it locally failed; check the URL or submit the file directly")
		}
	}
	os.Exit(1)
}
