package service

import (
	"github.com/caredocs/caredocs/internal/model"
)

// ResolvePath picks the artifact to serve. The signed artifact wins whenever
// the document is signed and a signature with a path exists; otherwise the original.
func ResolvePath(doc *model.Document, sig *model.Signature) (string, bool) {
	if doc.IsSigned() && sig != nil && sig.SignedPath != "" {
		return sig.SignedPath, true
	}
	return doc.OriginalPath, false
}
