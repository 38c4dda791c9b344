package main

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"magnify/internal/library"
	"magnify/internal/preview"
	"magnify/internal/zoom"
)

const previewHelp = `commands:
  n, next            show the next (older) photo
  p, prev            show the previous (newer) photo
  settle <index>     jump as if a swipe came to rest on index (0-based)
  pinch <factor>     pinch gesture frame, relative to the gesture start
  end                finish the pinch gesture
  delete             delete the photo being shown
  q, quit            close the preview`

// previewSession drives a carousel from text commands. It is the terminal
// counterpart of the gallery's preview screen.
type previewSession struct {
	cmd      *cobra.Command
	in       *bufio.Scanner
	carousel *preview.Carousel
	coord    *preview.Coordinator
}

func (s *previewSession) printState() {
	active, ok := s.carousel.Active()
	if !ok {
		s.cmd.Println("Preview closed.")
		return
	}
	pos := s.carousel.Position()
	if pos != "" {
		pos = "[" + pos + "] "
	}
	s.cmd.Printf("%s%s  %s  %d%%\n", pos, active.ID,
		library.CaptureTime(active).Format(captureTimeLayout), s.carousel.Zoom().Magnification())
}

// confirm reads the answer from the same input stream as the commands.
func (s *previewSession) confirm(title, message string, callback func(bool)) {
	s.cmd.Printf("%s: %s [y/N] ", title, message)
	answer := ""
	if s.in.Scan() {
		answer = strings.ToLower(strings.TrimSpace(s.in.Text()))
	}
	callback(answer == "y" || answer == "yes")
}

// handle runs one command line and reports whether the session should go on.
func (s *previewSession) handle(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "n", "next":
		s.carousel.Next()
	case "p", "prev", "previous":
		s.carousel.Previous()
	case "settle":
		if len(fields) != 2 {
			s.cmd.Println("usage: settle <index>")
			return true
		}
		i, err := strconv.Atoi(fields[1])
		if err != nil {
			s.cmd.Printf("invalid index %q\n", fields[1])
			return true
		}
		s.carousel.OnViewportSettled(i)
	case "pinch":
		if len(fields) != 2 {
			s.cmd.Println("usage: pinch <factor>")
			return true
		}
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			s.cmd.Printf("invalid factor %q\n", fields[1])
			return true
		}
		s.carousel.Zoom().OnGestureUpdate(f, zoom.Point{})
	case "end":
		s.carousel.Zoom().OnGestureEnd()
	case "delete":
		s.coord.DeleteActive(func(res preview.DeleteResult, err error) {
			switch {
			case err != nil:
				s.cmd.Printf("Delete failed: %v\n", err)
			case res.Cancelled:
				s.cmd.Println("Cancelled.")
			default:
				s.cmd.Printf("Deleted %s\n", res.RemovedID)
			}
		})
	case "q", "quit", "exit":
		s.carousel.Close()
		return false
	case "h", "help", "?":
		s.cmd.Println(previewHelp)
		return true
	default:
		s.cmd.Printf("unknown command %q (try help)\n", fields[0])
		return true
	}
	s.printState()
	return s.carousel.IsOpen()
}

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview [id]",
		Short: "Browse the library interactively, starting at id or the newest photo",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &previewSession{
				cmd:      cmd,
				in:       bufio.NewScanner(cmd.InOrStdin()),
				carousel: preview.NewCarousel(zoom.NewController(), preview.NewWindow(nil, cfg.WindowRadius, cliLogger)),
			}
			s.coord = preview.NewCoordinator(mgr, s.carousel, preview.ConfirmFunc(s.confirm), cliLogger)
			s.coord.Notify = func(msg string) { cmd.PrintErrln(msg) }

			lib := s.coord.LoadLibrary()
			if len(args) == 1 {
				if err := s.coord.OpenPhoto(args[0]); err != nil {
					return err
				}
			} else if !s.carousel.Open(lib, 0) {
				cmd.Println("No photos in the library.")
				return nil
			}

			s.printState()
			for {
				cmd.Print("> ")
				if !s.in.Scan() {
					cmd.Println()
					return s.in.Err()
				}
				if !s.handle(s.in.Text()) {
					return nil
				}
			}
		},
	}
}
