// Package assets talks to the asset service: library listing, uploads with
// local validation and probing, and asset resolution for logos and fonts.
package assets

import (
	"path/filepath"
	"strings"
)

// Kind classifies an asset the way the service does.
// ENUM(image, video, audio, pdf, doc, archive, link, note, font, other)
type Kind string

var fontMIMEs = map[string]bool{
	"font/woff2":            true,
	"font/woff":             true,
	"font/ttf":              true,
	"font/otf":              true,
	"application/font-woff": true,
}

var docMIMEs = map[string]bool{
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain":      true,
	"application/rtf": true,
	"application/vnd.oasis.opendocument.text": true,
}

var archiveMIMEs = map[string]bool{
	"application/zip":              true,
	"application/x-zip-compressed": true,
	"application/x-tar":            true,
	"application/gzip":             true,
	"application/x-7z-compressed":  true,
}

var extKinds = map[string]Kind{
	".woff2": KindFont, ".woff": KindFont, ".ttf": KindFont, ".otf": KindFont,
	".jpg": KindImage, ".jpeg": KindImage, ".png": KindImage, ".gif": KindImage,
	".webp": KindImage, ".avif": KindImage, ".svg": KindImage,
	".mp4": KindVideo, ".webm": KindVideo, ".mov": KindVideo, ".m4v": KindVideo, ".ogv": KindVideo,
	".mp3": KindAudio, ".wav": KindAudio, ".ogg": KindAudio, ".m4a": KindAudio, ".flac": KindAudio,
	".pdf": KindPdf,
	".doc": KindDoc, ".docx": KindDoc, ".xls": KindDoc, ".xlsx": KindDoc,
	".ppt": KindDoc, ".pptx": KindDoc, ".txt": KindDoc, ".rtf": KindDoc, ".odt": KindDoc,
	".zip": KindArchive, ".tar": KindArchive, ".gz": KindArchive, ".7z": KindArchive,
}

// InferKind mirrors the service's classification so upload log lines and
// picker filters agree with what the server will store. Text notes win over
// everything, then the MIME type, then the file extension.
func InferKind(filename, mimeType string, hasText bool) Kind {
	if hasText {
		return KindNote
	}
	if mimeType != "" {
		switch {
		case strings.HasPrefix(mimeType, "image/"):
			return KindImage
		case strings.HasPrefix(mimeType, "video/"):
			return KindVideo
		case strings.HasPrefix(mimeType, "audio/"):
			return KindAudio
		case fontMIMEs[mimeType]:
			return KindFont
		case mimeType == "application/pdf":
			return KindPdf
		case docMIMEs[mimeType]:
			return KindDoc
		case archiveMIMEs[mimeType]:
			return KindArchive
		}
	}
	if k, ok := extKinds[strings.ToLower(filepath.Ext(filename))]; ok {
		return k
	}
	return KindOther
}
