// Package upload owns the lifecycle of the three registration images:
// ingest to a temporary name, rename to the roll-number-qualified final
// name at preview, and re-key if the roll number changes during the
// submit retry.  Renames are all-or-nothing: if any of them fails, the
// ones already applied are undone and a single error is returned, so a
// session never ends up referencing a half-renamed set.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Filename suffixes for the three image kinds.
const (
	SuffixSelfie  = "SELFIE"
	SuffixIDFront = "IDFRONT"
	SuffixIDBack  = "IDBACK"
)

// Files holds the final stored paths of the images.  Empty fields mean
// the visitor did not upload that image.
type Files struct {
	Selfie  string `json:"selfie,omitempty"`
	IDFront string `json:"id_front,omitempty"`
	IDBack  string `json:"id_back,omitempty"`
}

// Empty reports whether no image was uploaded at all.
func (f Files) Empty() bool {
	return f.Selfie == "" && f.IDFront == "" && f.IDBack == ""
}

// Manager stores images under a single directory.
type Manager struct {
	dir string
}

// NewManager creates the upload directory if needed and returns a Manager.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Manager{dir: dir}, nil
}

// Ingest copies one multipart part into the upload directory under a
// collision-free temporary name and returns its path.  A nil header
// (part not submitted) returns an empty path.
func (m *Manager) Ingest(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", nil
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), sanitize(filepath.Base(fh.Filename)))
	path := filepath.Join(m.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// Finalize renames the ingested temporary files to their
// {roll}_{SUFFIX}.png names.  Empty source paths are skipped.
func (m *Manager) Finalize(roll, selfie, front, back string) (Files, error) {
	var moves []move
	out := Files{}
	if selfie != "" {
		out.Selfie = m.finalPath(roll, SuffixSelfie)
		moves = append(moves, move{selfie, out.Selfie})
	}
	if front != "" {
		out.IDFront = m.finalPath(roll, SuffixIDFront)
		moves = append(moves, move{front, out.IDFront})
	}
	if back != "" {
		out.IDBack = m.finalPath(roll, SuffixIDBack)
		moves = append(moves, move{back, out.IDBack})
	}
	if err := renameAll(moves); err != nil {
		return Files{}, err
	}
	return out, nil
}

// Rekey renames already-finalized files from oldRoll to newRoll.  Used
// when the submit handler loses the roll number race and allocates a
// replacement.
func (m *Manager) Rekey(oldRoll, newRoll string, f Files) (Files, error) {
	var moves []move
	out := Files{}
	if f.Selfie != "" {
		out.Selfie = m.finalPath(newRoll, SuffixSelfie)
		moves = append(moves, move{m.finalPath(oldRoll, SuffixSelfie), out.Selfie})
	}
	if f.IDFront != "" {
		out.IDFront = m.finalPath(newRoll, SuffixIDFront)
		moves = append(moves, move{m.finalPath(oldRoll, SuffixIDFront), out.IDFront})
	}
	if f.IDBack != "" {
		out.IDBack = m.finalPath(newRoll, SuffixIDBack)
		moves = append(moves, move{m.finalPath(oldRoll, SuffixIDBack), out.IDBack})
	}
	if err := renameAll(moves); err != nil {
		return Files{}, err
	}
	return out, nil
}

func (m *Manager) finalPath(roll, suffix string) string {
	return filepath.Join(m.dir, roll+"_"+suffix+".png")
}

type move struct{ from, to string }

// renameAll applies every rename or none.  On failure the renames
// already performed are reversed before the error is returned.
func renameAll(moves []move) error {
	for i, mv := range moves {
		if err := os.Rename(mv.from, mv.to); err != nil {
			for j := i - 1; j >= 0; j-- {
				// best-effort undo; the originals were just created
				_ = os.Rename(moves[j].to, moves[j].from)
			}
			return fmt.Errorf("rename %s: %w", filepath.Base(mv.to), err)
		}
	}
	return nil
}

// sanitize collapses whitespace in client-supplied filenames the same
// way name fields are normalized: spaces become underscores.
func sanitize(name string) string {
	return strings.Join(strings.Fields(name), "_")
}
