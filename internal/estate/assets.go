package estate

// UploadFile is one file supplied to an add or edit operation:
// a name and its byte content.
type UploadFile struct {
	Name string
	Data []byte
}

// ImageInfo describes one successfully decoded image inside an asset folder.
type ImageInfo struct {
	Name   string
	Format string // "jpeg", "png", "gif"
	Width  int
	Height int
}

// AssetManager owns the on-disk image folders referenced by listings.
// Folder contents are owned exclusively by the manager; listings hold only
// the folder path.
type AssetManager interface {
	// Root returns the asset tree root directory.
	Root() string

	// CreateFolder builds the folder path for a new record from its category
	// and pre-insert ordinal, creating it (and parents) if absent. Callers
	// guarantee ordinal uniqueness through store semantics.
	CreateFolder(category string, ordinal int) (string, error)

	// WriteFiles writes each file into the folder, silently overwriting
	// same-named files.
	WriteFiles(folder string, files []UploadFile) error

	// ReplaceFiles deletes every existing file in the folder, then writes the
	// supplied ones. With no files it is a no-op: existing assets are kept.
	ReplaceFiles(folder string, files []UploadFile) error

	// DeleteFolder recursively removes a folder. An absent folder is not an
	// error.
	DeleteFolder(folder string) error

	// CopyTo copies every file directly inside folder into dest, creating
	// dest if absent. Originals are kept.
	CopyTo(folder, dest string) error

	// ListImages decodes every file directly inside folder and returns the
	// decodable ones plus the count of files skipped as unreadable or
	// non-image. Recomputed from disk on each call; non-recursive.
	ListImages(folder string) ([]ImageInfo, int, error)
}
