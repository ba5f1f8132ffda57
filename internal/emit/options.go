package emit

import (
	"path"
	"strings"
)

// Options parameterize a generation run. Zero fields take defaults
// derived from Namespace.
type Options struct {
	// Namespace is the C++ namespace of the implementation and the prefix
	// of shared artifact names.
	Namespace string
	// APIMacro marks exported C ABI functions. Default: <NAMESPACE>_API.
	APIMacro string
	// ImplHeader is the header declaring the implementation classes.
	// Only its base name is used. Default: <namespace>.hpp.
	ImplHeader string
	// JavaPackage is the package of the generated Java classes.
	// Default: the namespace with '_' replaced by '.'.
	JavaPackage string
	// LibraryName is the shared library base name loaded by the Python
	// module. Default: the namespace.
	LibraryName string
}

// WithDefaults returns a copy of o with every empty field filled in
func (o Options) WithDefaults() Options {
	if o.APIMacro == "" {
		o.APIMacro = strings.ToUpper(o.Namespace) + "_API"
	}
	if o.ImplHeader == "" {
		o.ImplHeader = o.Namespace + ".hpp"
	}
	o.ImplHeader = path.Base(strings.ReplaceAll(o.ImplHeader, "\\", "/"))
	if o.JavaPackage == "" {
		o.JavaPackage = strings.ReplaceAll(o.Namespace, "_", ".")
	}
	if o.LibraryName == "" {
		o.LibraryName = o.Namespace
	}
	return o
}

// ExportMacro is defined while building the shared library so that
// APIMacro expands to the export attribute.
func (o Options) ExportMacro() string {
	if strings.HasSuffix(o.APIMacro, "_API") {
		return strings.TrimSuffix(o.APIMacro, "_API") + "_EXPORTS"
	}
	return o.APIMacro + "_EXPORTS"
}

// ExportHeader is the header defining APIMacro, derived from it:
// FACE_DETECTOR_API becomes face_detector_export.h.
func (o Options) ExportHeader() string {
	return strings.ToLower(strings.TrimSuffix(o.APIMacro, "_API")) + "_export.h"
}

// JavaPackagePath is the package as a directory path
func (o Options) JavaPackagePath() string {
	return strings.ReplaceAll(o.JavaPackage, ".", "/")
}
