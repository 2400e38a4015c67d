// Package seed populates a development database with a demo user and a
// small drive tree, so the API has something to serve right after a fresh
// migration.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cirrus/internal/domain/models"
	"cirrus/internal/domain/services"
)

// File is a sample file planted during seeding.
type File struct {
	Name    string
	Content string
}

// Tree describes the demo drive layout.
type Tree struct {
	Folders map[string][]File // folder name -> files inside it
	Loose   []File            // files directly under the root
}

// DefaultTree returns the layout the seed tool plants when none is given.
func DefaultTree() Tree {
	return Tree{
		Folders: map[string][]File{
			"Documents": {
				{Name: "welcome.txt", Content: "Welcome to your drive.\n"},
				{Name: "notes.md", Content: "# Notes\n\n- first note\n"},
			},
			"Photos": {},
		},
		Loose: []File{
			{Name: "readme.txt", Content: "Files in the root folder.\n"},
		},
	}
}

// PlantDrive provisions a user record for the given identity and fills the
// drive root with the demo tree. Running it twice against the same identity
// only adds duplicate-named siblings, which the tree permits.
func PlantDrive(ctx context.Context, users services.UserService, drive services.DriveService, userID, email string, tree Tree, logger *slog.Logger) error {
	user, err := users.GetOrProvision(ctx, userID, email)
	if err != nil {
		return fmt.Errorf("provision user: %w", err)
	}

	for _, f := range tree.Loose {
		if _, err := drive.Upload(ctx, userID, user.DriveRootID, f.Name, strings.NewReader(f.Content)); err != nil {
			return fmt.Errorf("seed file %s: %w", f.Name, err)
		}
	}

	for folderName, files := range tree.Folders {
		folder, err := drive.CreateFolder(ctx, userID, &models.CreateFolderRequest{
			ParentID: user.DriveRootID,
			Name:     folderName,
		})
		if err != nil {
			return fmt.Errorf("seed folder %s: %w", folderName, err)
		}
		for _, f := range files {
			if _, err := drive.Upload(ctx, userID, folder.ID, f.Name, strings.NewReader(f.Content)); err != nil {
				return fmt.Errorf("seed file %s/%s: %w", folderName, f.Name, err)
			}
		}
	}

	logger.Info("demo drive planted", "user_id", userID, "root_id", user.DriveRootID)
	return nil
}
