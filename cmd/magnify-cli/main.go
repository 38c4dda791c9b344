package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"magnify/internal/config"
	"magnify/internal/library"
	"magnify/internal/media"
)

var (
	dataDirFlag   string
	forceFlag     bool
	dryRunFlag    bool
	exifTimeFlag  bool
	filterFlag    string
	timestampFlag int64

	cfg        config.Config
	mgr        *library.Manager
	closeIndex func() error
)

const captureTimeLayout = "2006-01-02 15:04:05.000"

// closeLibrary releases the index. Execute skips PersistentPostRun when a
// command fails, so callers also run it after Execute.
func closeLibrary() {
	if closeIndex != nil {
		if err := closeIndex(); err != nil {
			log.Printf("Error closing photo index: %v", err)
		}
		closeIndex = nil
	}
}

func cliLogger(msg string) {
	log.Printf("[magnify-cli] %s", msg)
}

// OpenFunc opens the photo library described by cfg.
type OpenFunc func(cfg config.Config, logger library.LoggerFunc) (*library.Manager, func() error, error)

// loadOrWarn loads the library, printing a warning instead of failing when the
// index cannot be read.
func loadOrWarn(cmd *cobra.Command) library.Library {
	lib, err := mgr.Load()
	if err != nil {
		cmd.PrintErrf("Warning: %v\n", err)
	}
	return lib
}

func scratchDir() string {
	return filepath.Join(cfg.DataDir, "scratch")
}

// NewRootCmd creates the root command. open is called before each command to
// get the Manager, so tests can point it at a temporary directory.
func NewRootCmd(open OpenFunc) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "magnify-cli",
		Short:         "Magnify CLI - manage the photo library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig(dataDirFlag)
			if err != nil {
				return err
			}
			mgr, closeIndex, err = open(cfg, cliLogger)
			if err != nil {
				return fmt.Errorf("failed to open photo library: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeLibrary()
		},
	}

	addCmd := &cobra.Command{
		Use:   "add [image]",
		Short: "Copy an image into the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			ts := timestampFlag
			if exifTimeFlag && ts <= 0 {
				if t, ok := media.NewImageService().CaptureTime(src); ok {
					ts = t.UnixMilli()
				} else {
					cmd.PrintErrf("No EXIF capture time in %s, using the current time.\n", src)
				}
			}

			f, err := media.ParseFilter(filterFlag)
			if err != nil {
				return err
			}
			if f != media.FilterNone {
				p, err := media.NewPipeline(scratchDir())
				if err != nil {
					return err
				}
				filtered, err := p.Apply(src, f)
				if err != nil {
					return err
				}
				defer os.Remove(filtered)
				src = filtered
			}

			rec, err := mgr.Add(src, ts)
			if err != nil {
				return err
			}
			cmd.Printf("Added %s (%s)\n", rec.ID, rec.FileRef)
			return nil
		},
	}
	addCmd.Flags().BoolVar(&exifTimeFlag, "exif-time", false, "Use the image's EXIF capture time as the timestamp")
	addCmd.Flags().StringVar(&filterFlag, "filter", string(media.FilterNone), "Filter to apply before saving (none, grayscale, invert, high-contrast, bright)")
	addCmd.Flags().Int64Var(&timestampFlag, "timestamp", 0, "Capture time in milliseconds since epoch (default now)")
	rootCmd.AddCommand(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List photos, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := loadOrWarn(cmd)
			if lib.Len() == 0 {
				cmd.Println("No photos in the library.")
				return nil
			}
			for _, r := range lib {
				cmd.Printf("%s\t%s\t%s\n", r.ID, library.CaptureTime(r).Format(captureTimeLayout), r.FileRef)
			}
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	infoCmd := &cobra.Command{
		Use:   "info [id]",
		Short: "Show details for one photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := mgr.Get(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("ID:        %s\n", rec.ID)
			cmd.Printf("Captured:  %s\n", library.CaptureTime(rec).Format(captureTimeLayout))
			cmd.Printf("File:      %s\n", rec.FileRef)
			info, _, err := media.NewImageService().GetImageInfo(rec.FileRef)
			if err != nil {
				cmd.Printf("Image:     unavailable (%v)\n", err)
				return nil
			}
			cmd.Printf("Size:      %d bytes\n", info.Size)
			cmd.Printf("Dimension: %dx%d\n", info.Width, info.Height)
			keys := make([]string, 0, len(info.EXIFData))
			for k := range info.EXIFData {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				cmd.Printf("  %s: %s\n", k, info.EXIFData[k])
			}
			return nil
		},
	}
	rootCmd.AddCommand(infoCmd)

	removeCmd := &cobra.Command{
		Use:   "remove [id]",
		Short: "Delete a photo and its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := mgr.Remove(args[0])
			if errors.Is(err, library.ErrNotFound) {
				cmd.Printf("Photo %s not found, nothing to remove.\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			cmd.Printf("Removed %s\n", args[0])
			return nil
		},
	}
	rootCmd.AddCommand(removeCmd)

	removeAllCmd := &cobra.Command{
		Use:   "remove-all",
		Short: "Delete every photo in the library",
		Long: `Delete every photo file and clear the index.
WARNING: This operation is irreversible. Use --force to skip the confirmation prompt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := loadOrWarn(cmd)
			if !forceFlag {
				cmd.Printf("This will delete %d photos. Type 'delete' to confirm: ", lib.Len())
				var response string
				fmt.Fscanln(cmd.InOrStdin(), &response)
				if strings.ToLower(strings.TrimSpace(response)) != "delete" {
					cmd.Println("Aborted.")
					return nil
				}
			}
			result, err := mgr.RemoveAll()
			if err != nil {
				return err
			}
			cmd.Printf("Removed %d photos, %d files deleted.\n", result.Records, result.FilesDeleted)
			if w := result.Warning(); w != nil {
				cmd.PrintErrf("Warning: %v\n", w)
			}
			return nil
		},
	}
	removeAllCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Delete without asking for confirmation")
	rootCmd.AddCommand(removeAllCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete photo files that have no index entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := mgr.Sweep(dryRunFlag)
			if err != nil {
				return err
			}
			if len(result.OrphanFiles) == 0 && len(result.MissingFiles) == 0 {
				cmd.Println("Library is consistent.")
				return nil
			}
			for _, f := range result.OrphanFiles {
				cmd.Printf("orphan file: %s\n", f)
			}
			for _, id := range result.MissingFiles {
				cmd.Printf("missing file for: %s\n", id)
			}
			if dryRunFlag {
				cmd.Println("[DRY RUN] No files were deleted.")
			} else {
				cmd.Printf("Deleted %d orphan files.\n", result.Deleted)
			}
			return nil
		},
	}
	sweepCmd.Flags().BoolVar(&dryRunFlag, "dryrun", false, "Report what would be deleted without deleting")
	rootCmd.AddCommand(sweepCmd)

	filterCmd := &cobra.Command{
		Use:   "filter [image] [filter]",
		Short: "Write a filtered copy of an image without adding it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := media.ParseFilter(args[1])
			if err != nil {
				return err
			}
			p, err := media.NewPipeline(scratchDir())
			if err != nil {
				return err
			}
			out, err := p.Apply(args[0], f)
			if err != nil {
				return err
			}
			cmd.Println(out)
			return nil
		},
	}
	rootCmd.AddCommand(filterCmd)

	shareCmd := &cobra.Command{
		Use:   "share [id]",
		Short: "Print a shareable data URL for a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := mgr.Get(args[0])
			if err != nil {
				return err
			}
			return media.Share(writerSharer{cmd: cmd}, rec.FileRef)
		},
	}
	rootCmd.AddCommand(shareCmd)

	rootCmd.AddCommand(newPreviewCmd())

	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "datadir", "", "Directory holding the photo index and files")

	return rootCmd
}

// writerSharer prints the payload for another program to pick up.
type writerSharer struct{ cmd *cobra.Command }

func (s writerSharer) Share(p media.SharePayload) error {
	s.cmd.Printf("%s\n%s\n", p.Message, p.URL)
	return nil
}

func main() {
	config.LoadEnvFile()
	rootCmd := NewRootCmd(library.Open)
	err := rootCmd.Execute()
	closeLibrary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
