package packager

import (
	"bytes"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// BinaryFileMode makes staged binaries executable by everyone.
	BinaryFileMode os.FileMode = 0o755

	// DefaultChecksumFunction is used to verify staged binaries and fill the release description.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512
)

var errHashUnavailable = errors.New("hash function unavailable")

// stagedPackage is the outcome of one materialized target.
type stagedPackage struct {
	name      string
	directory string
	binary    string
	checksum  []byte
}

// stageBinary copies source to destination with BinaryFileMode and returns the checksum
// the copy was verified against. A missing source keeps os.ErrNotExist in the chain.
func stageBinary(source, destination string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(source))
	if err != nil {
		return nil, fmt.Errorf("read binary: %w", err)
	}

	checksum, err := calculateChecksum(contents)
	if err != nil {
		return nil, err
	}

	// go-update swaps files by renaming, so the target has to exist first.
	placeholder, err := os.OpenFile(filepath.Clean(destination), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, BinaryFileMode)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", destination, err)
	}

	if err = placeholder.Close(); err != nil {
		return nil, fmt.Errorf("create %s: %w", destination, err)
	}

	options := goupdate.Options{
		TargetPath: destination,
		TargetMode: BinaryFileMode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(contents), options); err != nil {
		return nil, fmt.Errorf("stage %s: %w", destination, err)
	}

	// The umask may have stripped bits from TargetMode.
	if err = os.Chmod(destination, BinaryFileMode); err != nil {
		return nil, fmt.Errorf("chmod %s: %w", destination, err)
	}

	return checksum, nil
}

// calculateChecksum returns checksum bytes for contents using DefaultChecksumFunction.
func calculateChecksum(contents []byte) ([]byte, error) {
	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err := hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}
