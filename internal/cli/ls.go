package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stampcam/internal/config"
	"stampcam/internal/library"
)

// newLsCmd lists the captured photos and recorded videos from the
// configured library directories.
func newLsCmd() *cobra.Command {
	var photosOnly, videosOnly bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List captured photos and videos",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := config.Get()

			if !videosOnly {
				names, err := library.Photos(cfg.Capture.PhotoDir)
				if err != nil {
					return fmt.Errorf("failed to list photos: %w", err)
				}
				printSection("Photos", cfg.Capture.PhotoDir, names)
			}
			if !photosOnly {
				names, err := library.Videos(cfg.Capture.VideoDir)
				if err != nil {
					return fmt.Errorf("failed to list videos: %w", err)
				}
				printSection("Videos", cfg.Capture.VideoDir, names)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&photosOnly, "photos", false, "List photos only")
	cmd.Flags().BoolVar(&videosOnly, "videos", false, "List videos only")

	return cmd
}

func printSection(title, dir string, names []string) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("%s (%s)", title, dir)))
	if len(names) == 0 {
		fmt.Println(emptyStyle.Render("none"))
		return
	}
	for _, name := range names {
		fmt.Println(itemStyle.Render(name))
	}
	fmt.Println(countStyle.Render(fmt.Sprintf("%d total", len(names))))
}
