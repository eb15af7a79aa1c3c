package commands

import (
	"context"
	"fmt"

	"drivebak/internal/application"
	"drivebak/internal/ports"
)

// HashFileCommand computes the digest of one file
type HashFileCommand struct {
	hasher ports.Hasher
	Path   string
}

// HashFileResult contains the digest of a file
type HashFileResult struct {
	Path      string `json:"path"`
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
	Message   string `json:"-"`
}

// NewHashFileCommand creates a new HashFileCommand
func NewHashFileCommand(hasher ports.Hasher, path string) *HashFileCommand {
	return &HashFileCommand{
		hasher: hasher,
		Path:   path,
	}
}

// Validate validates the command parameters
func (c *HashFileCommand) Validate() error {
	return application.ValidateRequired("path", c.Path)
}

// Execute runs the hash command
func (c *HashFileCommand) Execute(ctx context.Context) (*HashFileResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	digest, err := c.hasher.Hash(c.Path)
	if err != nil {
		return nil, err
	}

	return &HashFileResult{
		Path:      c.Path,
		Algorithm: c.hasher.Algorithm(),
		Digest:    digest,
		Message:   fmt.Sprintf("%s  %s", digest, c.Path),
	}, nil
}

// CompareFilesCommand checks whether two files have identical content
type CompareFilesCommand struct {
	hasher ports.Hasher
	PathA  string
	PathB  string
}

// CompareFilesResult contains the comparison outcome
type CompareFilesResult struct {
	PathA     string `json:"path_a"`
	PathB     string `json:"path_b"`
	Algorithm string `json:"algorithm"`
	Equal     bool   `json:"equal"`
	Message   string `json:"-"`
}

// NewCompareFilesCommand creates a new CompareFilesCommand
func NewCompareFilesCommand(hasher ports.Hasher, pathA, pathB string) *CompareFilesCommand {
	return &CompareFilesCommand{
		hasher: hasher,
		PathA:  pathA,
		PathB:  pathB,
	}
}

// Validate validates the command parameters
func (c *CompareFilesCommand) Validate() error {
	if err := application.ValidateRequired("pathA", c.PathA); err != nil {
		return err
	}
	return application.ValidateRequired("pathB", c.PathB)
}

// Execute runs the compare command
func (c *CompareFilesCommand) Execute(ctx context.Context) (*CompareFilesResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	equal, err := c.hasher.FilesEqual(c.PathA, c.PathB)
	if err != nil {
		return nil, err
	}

	verdict := "differ"
	if equal {
		verdict = "are identical"
	}

	return &CompareFilesResult{
		PathA:     c.PathA,
		PathB:     c.PathB,
		Algorithm: c.hasher.Algorithm(),
		Equal:     equal,
		Message:   fmt.Sprintf("%s and %s %s (%s)", c.PathA, c.PathB, verdict, c.hasher.Algorithm()),
	}, nil
}
