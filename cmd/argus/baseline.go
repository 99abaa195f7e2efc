package main

import (
	"fmt"
	"os"

	"argus/internal/baseline"
	"argus/internal/diag"
	"argus/internal/source"
)

func writeBaseline(path string, bag *diag.Bag, fs *source.FileSet) error {
	b := baseline.FromBag(bag, fs)
	if err := baseline.Save(path, b); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %d finding(s) to %s\n", bag.Len(), path)
	return nil
}
