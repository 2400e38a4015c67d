package models

import "time"

// User is the drive-side record for an authenticated identity. Credentials
// live with the identity provider; this record only tracks what the drive
// needs: the root folder and the optional profile picture blob.
type User struct {
	ID             string    `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	Username       string    `json:"username" db:"username"`
	DriveRootID    string    `json:"drive_root_id" db:"drive_root_id"`
	ProfileBlobRef string    `json:"-" db:"profile_blob_ref"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type ChangeUsernameRequest struct {
	NewName string `json:"new_name"`
}
