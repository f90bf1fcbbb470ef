package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/theus-ai/omfetch/pkg/domain/model"
)

var (
	headerColor  = color.New(color.Bold)
	successColor = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
	dimColor     = color.New(color.Faint)
)

// printSummary renders the per-target report for the operator
func printSummary(reports []model.TargetReport) {
	succeeded := 0
	for _, r := range reports {
		if r.Succeeded {
			succeeded++
		}
	}

	fmt.Println()
	headerColor.Println("Download summary")
	successColor.Printf("  succeeded: %d\n", succeeded)
	failColor.Printf("  failed:    %d\n", len(reports)-succeeded)

	for _, r := range reports {
		fmt.Println()
		if r.Succeeded {
			successColor.Printf("OK  %s (%s)\n", r.Target.URL, r.Method)
			for _, f := range r.Files {
				fmt.Printf("    %s (%d KB)\n", filepath.Base(f.Path), f.Size/1024)
			}
		} else {
			failColor.Printf("ERR %s\n", r.Target.URL)
			fmt.Printf("    %s\n", r.Reason)
		}
		for _, a := range r.Attempts {
			dimColor.Printf("    rejected: %s (%s)\n", a.URL, a.Reason)
		}
	}
	fmt.Println()
}
