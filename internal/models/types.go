package models

import "time"

// SaveImageData describes one in-memory image for a batch save.
type SaveImageData struct {
	Bytes        []byte `json:"image"`
	FileName     string `json:"fileName"`
	Extension    string `json:"extension,omitempty"`
	RelativePath string `json:"relativePath,omitempty"`
}

// SaveFileData describes one on-disk file for a batch save.
type SaveFileData struct {
	FilePath     string `json:"filePath"`
	FileName     string `json:"fileName"`
	RelativePath string `json:"relativePath,omitempty"`
}

// SaveResult is the outcome of any save operation. Batch calls fold
// per-item errors into ErrorMessage instead of failing the whole call.
type SaveResult struct {
	IsSuccess    bool   `json:"isSuccess"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func SuccessResult() SaveResult {
	return SaveResult{IsSuccess: true}
}

func FailureResult(msg string) SaveResult {
	return SaveResult{IsSuccess: false, ErrorMessage: msg}
}

// ImportOutcome records what happened to one file picked up from a
// watched drop directory.
type ImportOutcome struct {
	Source       string    `json:"source"`
	FileName     string    `json:"file_name"`
	Checksum     string    `json:"checksum,omitempty"`
	ImportedAt   time.Time `json:"imported_at"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
}
