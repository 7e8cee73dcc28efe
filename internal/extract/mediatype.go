package extract

import (
	"archive/zip"
	"bytes"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
)

// modelMediaTypes are the document types hosted multimodal models accept inline.
var modelMediaTypes = map[string]bool{
	MimePDF:      true,
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// ModelAccepts reports whether mediaType can be sent to the model as-is.
func ModelAccepts(mediaType string) bool {
	return modelMediaTypes[mediaType]
}

// NormalizeMediaType strips parameters and lower-cases the declared type.
// Missing, generic, or zip declarations are resolved by sniffing data.
func NormalizeMediaType(declared string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	switch clean {
	case "image/jpg", "image/pjpeg":
		return "image/jpeg"
	case "", "application/octet-stream", "binary/octet-stream", "application/zip", "application/x-zip-compressed":
	default:
		return clean
	}

	if len(data) == 0 {
		return clean
	}
	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}
	sniffed := strings.ToLower(strings.Split(mimetype.Detect(data).String(), ";")[0])
	if sniffed == "application/octet-stream" && clean != "" {
		return clean
	}
	return sniffed
}

func mapOOXMLFromZip(data []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return MimeDOCX
		}
	}
	return ""
}
