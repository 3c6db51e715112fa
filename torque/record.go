// Package torque reads batch job status from the PBS/Torque qstat command.
package torque

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// A Record holds the fields of one job as reported by qstat -x. Keys are
// lower-cased element names; values are either leaf strings or nested
// Records. A Record is a snapshot and is not mutated after parsing.
type Record map[string]interface{}

// ParseJobs parses the XML output of qstat -x and returns the jobs found in
// the document, in document order. A document without Job elements yields an
// empty slice.
func ParseJobs(doc []byte) ([]Job, error) {
	root, err := parseDocument(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse qstat output: %w", err)
	}

	jobs := []Job{}

	for _, el := range findElements(root, "Job") {
		jobs = append(jobs, Job{rec: makeRecord(el)})
	}

	return jobs, nil
}

// An element is a node of the raw document tree.
type element struct {
	name     string
	text     string
	children []*element
}

func parseDocument(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)

	root := &element{}
	stack := []*element{root}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			el := &element{name: tok.Name.Local}
			top := stack[len(stack)-1]
			top.children = append(top.children, el)
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			top := stack[len(stack)-1]
			top.text += string(tok)
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("unclosed element")
	}

	return root, nil
}

// findElements returns the elements with given tag name anywhere under el,
// in document order.
func findElements(el *element, name string) []*element {
	var found []*element

	for _, child := range el.children {
		if child.name == name {
			found = append(found, child)
		}
		found = append(found, findElements(child, name)...)
	}

	return found
}

// makeRecord converts the tree under el into a Record. An element containing
// elements becomes a nested Record, an element containing text becomes a leaf
// string and an empty element contributes no entry. Duplicate sibling tags
// keep the last occurrence.
func makeRecord(el *element) Record {
	rec := Record{}

	for _, child := range el.children {
		key := strings.ToLower(child.name)

		switch {
		case len(child.children) > 0:
			rec[key] = makeRecord(child)

		case child.text != "":
			rec[key] = child.text
		}
	}

	return rec
}

// lookup resolves a dotted path like "resources_used.mem" within the record.
func (rec Record) lookup(path string) (string, error) {
	cur := rec

	segments := strings.Split(path, ".")

	for i, segment := range segments {
		value, ok := cur[segment]
		if !ok {
			return "", fmt.Errorf("%s: %w", path, ErrNoField)
		}

		if i == len(segments)-1 {
			leaf, ok := value.(string)
			if !ok {
				return "", fmt.Errorf("%s: %w", path, ErrNoField)
			}
			return leaf, nil
		}

		cur, ok = value.(Record)
		if !ok {
			return "", fmt.Errorf("%s: %w", path, ErrNoField)
		}
	}

	return "", fmt.Errorf("%s: %w", path, ErrNoField)
}
