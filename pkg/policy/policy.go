// Package policy loads the YAML policy document that drives a conformance run.
//
// A document names the organisation's internal namespace and, for every
// governed root, the prefixes it may depend on and the violations it
// tolerates:
//
//	namespace:
//	  delimiter: "."
//	  internal: [com.pulseenergy, com.seg]
//	roots:
//	  com.pulseenergy.web:
//	    allowed: [com.pulseenergy.core, com.pulseenergy.util]
//	    tolerated: [com.pulseenergy.point]
//	    note: JavascriptGenerator
//
// Unknown keys are rejected.
package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/archgate/pkg/core"
	"github.com/leapstack-labs/archgate/pkg/namespace"
)

// DefaultFileName is the policy file looked up when none is configured.
const DefaultFileName = "policy.yaml"

// Namespace describes what counts as internal code.
type Namespace struct {
	// Delimiter separates name segments. Defaults to ".".
	Delimiter string `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
	// Internal lists the organisation-root prefixes.
	Internal []string `yaml:"internal" json:"internal"`
}

// Document is a parsed policy file.
type Document struct {
	Namespace Namespace   `yaml:"namespace" json:"namespace"`
	Roots     core.Policy `yaml:"roots" json:"roots"`

	// Path is where the document was loaded from, empty for in-memory documents.
	Path string `yaml:"-" json:"-"`
}

// Load reads and parses the policy document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Parse decodes a policy document. Unknown keys are an error.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &core.ConfigurationError{Reason: "policy document is empty"}
		}
		return nil, fmt.Errorf("parse: %w", err)
	}
	if doc.Namespace.Delimiter == "" {
		doc.Namespace.Delimiter = core.DefaultDelimiter
	}
	if doc.Roots == nil {
		doc.Roots = core.Policy{}
	}
	return &doc, nil
}

// Marshal encodes the document back to YAML.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode policy: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode policy: %w", err)
	}
	return buf.Bytes(), nil
}

// Delimiter returns the effective name delimiter.
func (d *Document) Delimiter() string {
	if d.Namespace.Delimiter == "" {
		return core.DefaultDelimiter
	}
	return d.Namespace.Delimiter
}

// Classifier builds the namespace classifier described by the document.
func (d *Document) Classifier() *namespace.Classifier {
	return namespace.New(d.Delimiter(), d.Namespace.Internal...)
}

// Validate returns every configuration problem in the document joined
// together, or nil when the document can be evaluated.
func (d *Document) Validate() error {
	var errs []error
	for _, f := range d.findings() {
		if f.err != nil {
			errs = append(errs, f.err)
		}
	}
	return errors.Join(errs...)
}

// ValidateShared returns only the problems that prevent evaluating any root:
// a missing namespace or an empty root table. Problems scoped to one root are
// left to the conformance checker, which reports them as that root's result.
func (d *Document) ValidateShared() error {
	var errs []error
	for _, f := range d.findings() {
		if f.err != nil && strings.TrimSpace(f.diag.Root) == "" {
			errs = append(errs, f.err)
		}
	}
	return errors.Join(errs...)
}
