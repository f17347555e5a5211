package controllers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sweeparr/sweeparr/internal/models"
	"github.com/sweeparr/sweeparr/internal/utils"
)

// CleanupController walks a report interactively and deletes confirmed
// entries through the management service
type CleanupController struct {
	analyzeCtrl *AnalyzeController
	catalog     CatalogService
	logger      *logrus.Logger

	in  *bufio.Reader
	out io.Writer
}

// NewCleanupController creates a new interactive cleanup controller
func NewCleanupController(analyzeCtrl *AnalyzeController, catalog CatalogService, in io.Reader, out io.Writer, logger *logrus.Logger) *CleanupController {
	return &CleanupController{
		analyzeCtrl: analyzeCtrl,
		catalog:     catalog,
		logger:      logger,
		in:          bufio.NewReader(in),
		out:         out,
	}
}

// Run generates the unwatched report and prompts for a deletion decision
// per entry. removeFiles is a run-level switch passed to every confirmed
// delete. A failed deletion is reported and the walk continues.
func (c *CleanupController) Run(ctx context.Context, months, limit int, removeFiles bool) error {
	rep, err := c.analyzeCtrl.Unwatched(ctx, months, limit)
	if err != nil {
		return err
	}

	itemType := "movies"
	singular := "movie"
	if rep.Mode == models.ModeSonarr {
		itemType = "series"
		singular = "series"
	}

	if len(rep.Entries) == 0 {
		fmt.Fprintf(c.out, "\nNo unwatched %s found!\n", itemType)
		return nil
	}

	fmt.Fprintf(c.out, "\nFound %d %s that haven't been watched in %d months.\n", len(rep.Entries), itemType, rep.Months)
	fmt.Fprintf(c.out, "Total space that could be freed: %s\n", rep.TotalHuman)
	fmt.Fprintf(c.out, "\nInteractive deletion mode. For each %s, you'll be asked if you want to delete it.\n", singular)
	if removeFiles {
		fmt.Fprintln(c.out, "Delete files option is ENABLED")
	} else {
		fmt.Fprintln(c.out, "Delete files option is DISABLED")
	}
	fmt.Fprintln(c.out, "\nPress Enter to continue or Ctrl+C to abort...")
	if _, err := c.in.ReadString('\n'); err != nil {
		return fmt.Errorf("aborted: %w", err)
	}

	deleted := 0
	var freed int64

	for idx, entry := range rep.Entries {
		fmt.Fprintf(c.out, "\n[%d/%d] %s\n", idx+1, len(rep.Entries), entry.Title)
		fmt.Fprintf(c.out, "Size: %s\n", entry.SizeHuman)
		fmt.Fprintf(c.out, "Path: %s\n", entry.Path)

		confirm, err := c.prompt(fmt.Sprintf("Delete this %s? [y/n]: ", singular))
		if err != nil {
			return fmt.Errorf("aborted: %w", err)
		}
		if !confirm {
			fmt.Fprintf(c.out, "Skipping %s\n", entry.Title)
			continue
		}

		fmt.Fprintf(c.out, "Deleting %s...\n", entry.Title)
		if err := c.catalog.Delete(ctx, entry.ID, removeFiles); err != nil {
			c.logger.WithError(err).WithField("title", entry.Title).Error("Deletion failed")
			fmt.Fprintf(c.out, "Failed to delete %s\n", entry.Title)
			continue
		}

		fmt.Fprintf(c.out, "Successfully deleted %s\n", entry.Title)
		deleted++
		freed += entry.ReclaimableBytes
	}

	fmt.Fprintf(c.out, "\nDeletion complete. Deleted %d %s.\n", deleted, itemType)
	fmt.Fprintf(c.out, "Freed space: %s\n", utils.HumanSize(freed))
	return nil
}

// prompt asks a yes/no question and retries until the answer is one
func (c *CleanupController) prompt(question string) (bool, error) {
	for {
		fmt.Fprint(c.out, question)
		line, err := c.in.ReadString('\n')
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(c.out, "Please enter 'y' or 'n'")
	}
}
