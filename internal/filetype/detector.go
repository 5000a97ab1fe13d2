package filetype

import (
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"github.com/ftwtie/pdfmerger/internal/workflow"
)

// FileTypeInfo contains detected file type information
type FileTypeInfo struct {
	MIMEType    string
	Extension   string
	Supported   bool
	Description string
}

// Detector handles file type detection using magic bytes
type Detector struct{}

// New creates a new file type detector
func New() *Detector {
	return &Detector{}
}

// DetectBytes detects the file type of in-memory content using magic bytes.
func (d *Detector) DetectBytes(data []byte) *FileTypeInfo {
	mtype := mimetype.Detect(data)
	info := &FileTypeInfo{
		MIMEType:  baseType(mtype.String()),
		Extension: mtype.Extension(),
	}
	d.classify(info)
	return info
}

// DetectFile detects the actual file type of a file on disk, not its name.
func (d *Detector) DetectFile(path string) (*FileTypeInfo, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}
	info := &FileTypeInfo{
		MIMEType:  baseType(mtype.String()),
		Extension: mtype.Extension(),
	}
	log.Debug().Str("mime", info.MIMEType).Str("ext", info.Extension).Str("file", path).Msg("detected file type")
	d.classify(info)
	return info, nil
}

// classify marks PDF as the only supported input.
func (d *Detector) classify(info *FileTypeInfo) {
	switch {
	case info.MIMEType == workflow.PDFMIME:
		info.Supported = true
		info.Description = "PDF document"
	case strings.HasPrefix(info.MIMEType, "image/"):
		info.Description = "Image file"
	case strings.HasPrefix(info.MIMEType, "text/"):
		info.Description = "Plain text file"
	default:
		info.Description = fmt.Sprintf("Unsupported file type: %s", info.MIMEType)
	}
}

// ValidatePDF accepts data only when it sniffs as PDF and, if the client
// declared a content type, that type is PDF as well. It returns the detected
// type on success.
func (d *Detector) ValidatePDF(name, declared string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &workflow.InputValidationError{Field: "file", Message: workflow.MsgSelectFile}
	}
	if declared != "" && baseType(declared) != workflow.PDFMIME && baseType(declared) != "application/octet-stream" {
		log.Debug().Str("file", name).Str("declared", declared).Msg("rejected declared type")
		return "", &workflow.InputValidationError{Field: "file", Message: workflow.MsgInvalidPDF}
	}
	info := d.DetectBytes(data)
	if !info.Supported {
		log.Debug().Str("file", name).Str("mime", info.MIMEType).Msg("rejected sniffed type")
		return "", &workflow.InputValidationError{Field: "file", Message: workflow.MsgInvalidPDF}
	}
	return info.MIMEType, nil
}

func baseType(t string) string {
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return strings.ToLower(mt)
	}
	return strings.ToLower(strings.TrimSpace(t))
}
