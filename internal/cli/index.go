package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Control indexing runs",
}

var indexStartCmd = &cobra.Command{
	Use:   "start [paths...]",
	Short: "Start an indexing run over the given roots",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIndexStart,
}

var indexStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Request cancellation of the active indexing run",
	RunE:  runIndexStop,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of the active (or most recent) indexing run",
	RunE:  runIndexStatus,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexStartCmd, indexStopCmd, indexStatusCmd)
}

func runIndexStart(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nstopping indexing run...")
		application.surface.StopIndexing()
	}()

	if err := application.surface.StartIndexing(ctx, args); err != nil {
		return err
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("indexing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	for {
		status := application.surface.GetIndexStatus()
		if status.Total > 0 {
			bar.ChangeMax(status.Total)
			bar.Set(status.Indexed)
		}
		if !status.IsActive {
			bar.Finish()
			fmt.Printf("\nindexed %d/%d files", status.Indexed, status.Total)
			if len(status.Errors) > 0 {
				fmt.Printf(" (%d errors)", len(status.Errors))
			}
			fmt.Println()
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func runIndexStop(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.surface.StopIndexing(); err != nil {
		return err
	}
	fmt.Println("stop requested")
	return nil
}

func runIndexStatus(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	status := application.surface.GetIndexStatus()
	fmt.Printf("active: %v\n", status.IsActive)
	fmt.Printf("indexed: %d/%d (%.1f%%)\n", status.Indexed, status.Total, status.Percent)
	if status.Current != "" {
		fmt.Printf("current: %s\n", status.Current)
	}
	for _, e := range status.Errors {
		fmt.Printf("error: %s\n", e)
	}
	return nil
}
