package model

import (
	"path/filepath"
	"strings"

	"github.com/jonathan/role-recommender/internal/scoring"
)

// Options configures how classifier artifacts are opened.
type Options struct {
	// ONNXLibrary is the path of the onnxruntime shared library; empty uses the platform default.
	ONNXLibrary string
	// Manifest is the ONNX manifest path; empty derives it from the model path.
	Manifest string
}

// ManifestPath returns the default manifest location for an ONNX model: model_L.onnx → model_L.classes.json.
func ManifestPath(modelPath string) string {
	return strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + ".classes.json"
}

// Load opens a classifier artifact, choosing the backend by file extension.
func Load(path string, source OrdinalSource, opts Options) (scoring.Classifier, error) {
	if strings.EqualFold(filepath.Ext(path), ".onnx") {
		manifestPath := opts.Manifest
		if manifestPath == "" {
			manifestPath = ManifestPath(path)
		}
		manifest, err := LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		return LoadONNX(path, manifest, opts.ONNXLibrary, source)
	}
	return LoadTreeEnsemble(path, source)
}
