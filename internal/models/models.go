package models

import "time"

// Viewer is the authenticated identity making a request, as resolved
// from the bearer credential. The vault never creates viewers itself.
type Viewer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ShareEntry is one grant of view access on a photo, identified by the
// recipient's email address.
type ShareEntry struct {
	Email    string    `json:"email"`
	SharedAt time.Time `json:"shared_at"`
}

// TrashMark records one viewer's trash state on a photo. The email is
// captured at trash time so the retention sweep can release a recipient's
// share grant when it expires the mark on their behalf. Deleted marks an
// owner who permanently deleted their copy while recipients still held
// share grants; the media survives until those grants drain.
type TrashMark struct {
	TrashedAt time.Time `json:"trashed_at"`
	Email     string    `json:"email,omitempty"`
	Deleted   bool      `json:"deleted,omitempty"`
}

// Photo represents one uploaded image and its lifecycle state.
//
// Filename doubles as the media-store key and is immutable once set.
// TrashBy maps a viewer ID to the time that viewer moved the photo to
// their personal trash; trash is per-viewer, never global.
type Photo struct {
	ID         string               `json:"id"`
	Filename   string               `json:"filename"`
	UploadedBy string               `json:"uploaded_by"`
	FavoriteBy []string             `json:"favorite_by"`
	TrashBy    map[string]TrashMark `json:"trash_by"`
	SharedWith []ShareEntry         `json:"shared_with"`
	IsPublic   bool                 `json:"is_public"` // reserved, not consulted by access checks
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// IsFavoritedBy reports whether userID favorited the photo.
func (p *Photo) IsFavoritedBy(userID string) bool {
	for _, id := range p.FavoriteBy {
		if id == userID {
			return true
		}
	}
	return false
}

// IsSharedWith reports whether the photo is shared with the given email.
func (p *Photo) IsSharedWith(email string) bool {
	for _, s := range p.SharedWith {
		if s.Email == email {
			return true
		}
	}
	return false
}

// ShareRecord is an append-only audit entry for one sharing event.
// Unsharing flips IsActive to false instead of deleting the record so
// history is preserved.
type ShareRecord struct {
	ID         string    `json:"id"`
	PhotoID    string    `json:"photo_id"`
	Filename   string    `json:"filename"`
	SharedBy   string    `json:"shared_by"`
	SharedWith string    `json:"shared_with"`
	SharedAt   time.Time `json:"shared_at"`
	IsActive   bool      `json:"is_active"`
}

// Album is a named, per-owner ordered set of photo filenames.
type Album struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Photos    []string  `json:"photos"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// PhotoSummary is one entry of a viewer's gallery listing.
type PhotoSummary struct {
	Name       string    `json:"name"`
	Favorite   bool      `json:"favorite"`
	IsOwner    bool      `json:"is_owner"`
	SharedBy   *string   `json:"shared_by,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// TrashSummary is one entry of a viewer's trash listing.
type TrashSummary struct {
	Name      string    `json:"name"`
	TrashedAt time.Time `json:"trashed_at"`
	IsOwner   bool      `json:"is_owner"`
}
