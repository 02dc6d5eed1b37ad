package gallery

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jhillyerd/enmime/mediatype"
)

// MimeToExt maps MIME types to canonical file extensions
var MimeToExt = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tiff",
	"image/webp":    ".webp",
	"image/heic":    ".heic",
	"image/heif":    ".heif",
	"image/avif":    ".avif",
	"image/svg+xml": ".svg",
	"video/mp4":     ".mp4",
	"video/mpeg":    ".mpeg",
	"video/quicktime":  ".mov",
	"video/webm":       ".webm",
	"video/x-matroska": ".mkv",
	"video/x-msvideo":  ".avi",
	"video/3gpp":       ".3gp",
	"audio/mpeg":       ".mp3",
	"audio/wav":        ".wav",
	"audio/mp4":        ".m4a",
	"audio/ogg":        ".ogg",
	"audio/flac":       ".flac",
	"audio/aac":        ".aac",
	"application/pdf":          ".pdf",
	"application/msword":       ".doc",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       ".xlsx",
	"text/plain":                   ".txt",
	"text/html":                    ".html",
	"text/csv":                     ".csv",
	"text/xml":                     ".xml",
	"application/zip":              ".zip",
	"application/x-tar":            ".tar",
	"application/x-gzip":           ".gz",
	"application/x-7z-compressed":  ".7z",
	"application/x-rar-compressed": ".rar",
}

// Resolve determines the MIME type and extension for a file name,
// sniffing content when a header slice is available. It never fails:
// an empty MIME type means "not determined" and the extension falls
// back to whatever the name carries after its last dot.
func Resolve(fileName string, header []byte) (string, string) {
	var mimeType, sniffExt string
	if len(header) > 0 {
		if mt := mimetype.Detect(header); !mt.Is("application/octet-stream") {
			mimeType = normalizeMediaType(mt.String())
			sniffExt = mt.Extension()
		}
	}
	if mimeType == "" {
		if byName := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); byName != "" {
			mimeType = normalizeMediaType(byName)
		}
	}

	return mimeType, extensionFor(mimeType, sniffExt, fileName)
}

// ResolveFile resolves the MIME type and extension of a file on disk by
// sniffing its content. Unreadable files degrade to name-only resolution.
func ResolveFile(path string) (string, string) {
	if mt, err := mimetype.DetectFile(path); err == nil && !mt.Is("application/octet-stream") {
		mimeType := normalizeMediaType(mt.String())
		return mimeType, extensionFor(mimeType, mt.Extension(), path)
	}
	return Resolve(path, nil)
}

// DefaultFolder selects the gallery folder for a MIME type. An
// undetermined type lands in Download, anything that is not image,
// video or audio lands in Documents.
func DefaultFolder(mimeType string) string {
	switch {
	case mimeType == "":
		return "Download"
	case strings.HasPrefix(mimeType, "image/"):
		return "Pictures"
	case strings.HasPrefix(mimeType, "video/"):
		return "Movies"
	case strings.HasPrefix(mimeType, "audio/"):
		return "Music"
	default:
		return "Documents"
	}
}

// NormalizeFileName appends the resolved extension when the name has no
// extension of its own. A name that already contains a dot is left
// alone, even if its suffix disagrees with the resolved type.
func NormalizeFileName(name, ext string) string {
	if ext == "" || strings.Contains(name, ".") {
		return name
	}
	return name + "." + ext
}

// TypeAllowed reports whether the file at path passes an allowed-types
// list. Entries are either extensions (".png", "png") matched against
// the file name, or media types ("image/png", "image/*") matched
// against the MIME type sniffed from content. An empty list allows
// everything.
func TypeAllowed(path string, allowedTypes []string) bool {
	if len(allowedTypes) == 0 {
		return true
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	mimeType := ""
	sniffed := false

	for _, allowed := range allowedTypes {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if allowed == "" {
			continue
		}

		if strings.Contains(allowed, "/") {
			if !sniffed {
				mimeType, _ = ResolveFile(path)
				sniffed = true
			}
			if matchMediaType(mimeType, allowed) {
				return true
			}
			continue
		}

		if ext != "" && ext == strings.TrimPrefix(allowed, ".") {
			return true
		}
	}

	return false
}

// matchMediaType compares a sniffed MIME type against a configured
// pattern, either exact ("image/png") or a family wildcard ("image/*").
func matchMediaType(mimeType, pattern string) bool {
	if mimeType == "" {
		return false
	}
	if family, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(mimeType, family+"/")
	}
	return mimeType == normalizeMediaType(pattern)
}

func extensionFor(mimeType, sniffExt, fileName string) string {
	if mimeType == "" {
		return nameExtension(fileName)
	}
	if ext, ok := MimeToExt[mimeType]; ok {
		return strings.TrimPrefix(ext, ".")
	}
	if sniffExt != "" {
		return strings.TrimPrefix(sniffExt, ".")
	}
	return nameExtension(fileName)
}

// normalizeMediaType strips parameters like charset and lowercases the
// type, so table lookups see "text/plain" and not "text/plain; charset=utf-8".
func normalizeMediaType(v string) string {
	mt, _, _, err := mediatype.Parse(v)
	if err != nil || mt == "" {
		if idx := strings.Index(v, ";"); idx >= 0 {
			v = v[:idx]
		}
		return strings.ToLower(strings.TrimSpace(v))
	}
	return strings.ToLower(mt)
}

func nameExtension(fileName string) string {
	return strings.TrimPrefix(filepath.Ext(fileName), ".")
}
